package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenlight/approval-portal/approval-portal-backend/internal/projects"
)

type recordingBroadcaster struct {
	messages []Message
}

func (b *recordingBroadcaster) Broadcast(msg Message) {
	b.messages = append(b.messages, msg)
}

func TestLoginNotifications(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	service := NewService(broadcaster, zap.NewNop())

	service.LoginSucceeded("admin@example.com", false)
	service.LoginSucceeded("admin@example.com", true)
	service.LoginFailed("admin@example.com")

	require.Len(t, broadcaster.messages, 3)

	assert.Equal(t, "Login successful", broadcaster.messages[0].Data.Title)
	assert.Equal(t, "Welcome back, admin@example.com!", broadcaster.messages[0].Data.Description)

	assert.Equal(t, "Login successful (Mock)", broadcaster.messages[1].Data.Title)
	assert.Contains(t, broadcaster.messages[1].Data.Description, "(Using mock data)")

	assert.Equal(t, TypeSessionFailed, broadcaster.messages[2].Type)
	assert.Equal(t, VariantDestructive, broadcaster.messages[2].Data.Variant)
}

func TestStepNotificationsNameTheStep(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	service := NewService(broadcaster, zap.NewNop())

	project := &projects.Project{ID: "1", Title: "Solar Installation", Steps: projects.NewSteps()}
	service.StepUpdated(project, 5)

	require.Len(t, broadcaster.messages, 1)
	assert.Contains(t, broadcaster.messages[0].Data.Description, "CEI Approval")
}

func TestRecentIsNewestFirstAndBounded(t *testing.T) {
	service := NewService(nil, zap.NewNop())

	for i := 0; i < recentLimit+10; i++ {
		service.LoggedOut(fmt.Sprintf("user%d@example.com", i))
	}

	recent := service.Recent()
	require.Len(t, recent, recentLimit)
	assert.True(t, !recent[0].CreatedAt.Before(recent[len(recent)-1].CreatedAt))
}
