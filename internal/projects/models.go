package projects

import (
	"time"

	"greenlight/approval-portal/approval-portal-backend/pkg/progress"
)

// Project represents a renewable-energy project moving through the
// regulatory approval workflow.
type Project struct {
	ID          string        `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	CreatedBy   string        `db:"created_by" json:"created_by"`
	Progress    float64       `json:"progress"`
	Steps       []ProjectStep `json:"steps"`
}

// ProjectStep is one project's state for a single workflow step. A project
// always carries exactly one entry per step definition, in definition order.
type ProjectStep struct {
	StepID       int        `db:"step_id" json:"step_id"`
	Completed    bool       `db:"completed" json:"completed"`
	DocumentURL  string     `db:"document_url" json:"document_url,omitempty"`
	DocumentName string     `db:"document_name" json:"document_name,omitempty"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// StepUpdate carries the writable fields of a step mutation. Nil fields
// leave the stored value untouched; a pointer to the zero value clears it.
// Progress is never part of an update; it is recomputed from persisted state.
type StepUpdate struct {
	Completed    *bool   `json:"completed,omitempty"`
	DocumentURL  *string `json:"document_url,omitempty"`
	DocumentName *string `json:"document_name,omitempty"`
}

// Bool and String build StepUpdate field pointers.
func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }

// CreateProjectRequest is the admin-facing create payload. Title must be
// validated non-empty by the caller before it reaches the repository.
type CreateProjectRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// Recompute derives the progress percentage from the step flags.
func (p *Project) Recompute() {
	flags := make([]bool, len(p.Steps))
	for i, s := range p.Steps {
		flags[i] = s.Completed
	}
	p.Progress = progress.Percent(flags)
}

// applyUpdate overlays the update's set fields onto the step and stamps it.
func (st *ProjectStep) applyUpdate(update StepUpdate, updatedAt time.Time) {
	if update.Completed != nil {
		st.Completed = *update.Completed
	}
	if update.DocumentURL != nil {
		st.DocumentURL = *update.DocumentURL
	}
	if update.DocumentName != nil {
		st.DocumentName = *update.DocumentName
	}
	t := updatedAt
	st.UpdatedAt = &t
}

// StepByID returns the step with the given id, or nil.
func (p *Project) StepByID(stepID int) *ProjectStep {
	for i := range p.Steps {
		if p.Steps[i].StepID == stepID {
			return &p.Steps[i]
		}
	}
	return nil
}
