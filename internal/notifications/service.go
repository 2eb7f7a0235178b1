package notifications

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"greenlight/approval-portal/approval-portal-backend/internal/projects"
)

// recentLimit bounds the in-memory history served to late-joining clients.
const recentLimit = 50

// Broadcaster pushes a message to every connected presentation client.
type Broadcaster interface {
	Broadcast(msg Message)
}

// Service turns session and project transitions into human-readable status
// notifications. It satisfies the Notifier interfaces of the auth, projects
// and documents packages.
type Service struct {
	broadcaster Broadcaster
	logger      *zap.Logger

	mu     sync.Mutex
	recent []Notification
}

func NewService(broadcaster Broadcaster, logger *zap.Logger) *Service {
	return &Service{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Recent returns the latest notifications, newest first.
func (s *Service) Recent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.recent))
	for i, n := range s.recent {
		out[len(s.recent)-1-i] = n
	}
	return out
}

func (s *Service) emit(msgType, title, description string, variant Variant) {
	notification := Notification{
		ID:          uuid.New(),
		Type:        msgType,
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.recent = append(s.recent, notification)
	if len(s.recent) > recentLimit {
		s.recent = s.recent[len(s.recent)-recentLimit:]
	}
	s.mu.Unlock()

	s.logger.Info("status notification",
		zap.String("type", msgType), zap.String("title", title),
		zap.String("description", description))

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(Message{
			Type:      msgType,
			Data:      notification,
			Timestamp: notification.CreatedAt,
		})
	}
}

// LoginSucceeded implements auth.Notifier.
func (s *Service) LoginSucceeded(email string, fallbackMode bool) {
	if fallbackMode {
		s.emit(TypeSessionStarted, "Login successful (Mock)",
			fmt.Sprintf("Welcome back, %s! (Using mock data)", email), VariantDefault)
		return
	}
	s.emit(TypeSessionStarted, "Login successful",
		fmt.Sprintf("Welcome back, %s!", email), VariantDefault)
}

// LoginFailed implements auth.Notifier.
func (s *Service) LoginFailed(email string) {
	s.emit(TypeSessionFailed, "Login failed", "Invalid email or password", VariantDestructive)
}

// LoggedOut implements auth.Notifier.
func (s *Service) LoggedOut(email string) {
	s.emit(TypeSessionEnded, "Logged out", "You have been logged out successfully", VariantDefault)
}

// ProjectCreated implements projects.Notifier.
func (s *Service) ProjectCreated(project *projects.Project) {
	s.emit(TypeProjectCreated, "Project created",
		fmt.Sprintf("%q is ready to track", project.Title), VariantDefault)
}

// StepUpdated implements projects.Notifier.
func (s *Service) StepUpdated(project *projects.Project, stepID int) {
	s.emit(TypeStepUpdated, "Step updated",
		fmt.Sprintf("%s: %s", project.Title, stepTitle(stepID)), VariantDefault)
}

// DocumentRemoved implements projects.Notifier.
func (s *Service) DocumentRemoved(project *projects.Project, stepID int) {
	s.emit(TypeDocumentRemoved, "Document removed",
		fmt.Sprintf("%s: %s reverted to incomplete", project.Title, stepTitle(stepID)), VariantDefault)
}

// DocumentUploaded implements documents.Notifier.
func (s *Service) DocumentUploaded(projectID string, stepID int, fileName string) {
	s.emit(TypeDocumentAdded, "Document uploaded",
		fmt.Sprintf("%s attached to %s", fileName, stepTitle(stepID)), VariantDefault)
}

func stepTitle(stepID int) string {
	for _, def := range projects.StepDefinitions {
		if def.ID == stepID {
			return def.Title
		}
	}
	return fmt.Sprintf("step %d", stepID)
}
