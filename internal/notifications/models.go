package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Variant mirrors the presentation layer's toast variants.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is one human-readable status message for the presentation
// layer.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is the WebSocket envelope pushed to connected clients.
type Message struct {
	Type      string       `json:"type"`
	Data      Notification `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

const (
	TypeSessionStarted  = "session.started"
	TypeSessionFailed   = "session.failed"
	TypeSessionEnded    = "session.ended"
	TypeProjectCreated  = "project.created"
	TypeStepUpdated     = "project.step_updated"
	TypeDocumentAdded   = "project.document_added"
	TypeDocumentRemoved = "project.document_removed"
)
