package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives project change events for the presentation layer.
type Notifier interface {
	ProjectCreated(project *Project)
	StepUpdated(project *Project, stepID int)
	DocumentRemoved(project *Project, stepID int)
}

// Service is the project repository exposed to the presentation layer.
//
// Remote failures never escape: every operation answers from the injected
// in-memory store when the database is unreachable, and a missing record is
// a nil result rather than an error.
type Service interface {
	ListProjects(ctx context.Context) []Project
	GetProject(ctx context.Context, id string) *Project
	CreateProject(ctx context.Context, req CreateProjectRequest) *Project
	UpdateProjectStep(ctx context.Context, projectID string, stepID int, update StepUpdate) *Project
	DeleteDocument(ctx context.Context, projectID string, stepID int) *Project
}

type projectService struct {
	remote   Repository
	fallback *MemoryStore
	notifier Notifier
	logger   *zap.Logger
}

func NewService(remote Repository, fallback *MemoryStore, notifier Notifier, logger *zap.Logger) Service {
	return &projectService{
		remote:   remote,
		fallback: fallback,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *projectService) ListProjects(ctx context.Context) []Project {
	list, err := s.remote.ListProjects(ctx)
	if err != nil {
		s.logger.Warn("listing projects from remote store failed, serving fallback data", zap.Error(err))
		list, _ = s.fallback.ListProjects(ctx)
	}
	return list
}

func (s *projectService) GetProject(ctx context.Context, id string) *Project {
	project, err := s.remote.GetProject(ctx, id)
	if err != nil {
		s.logger.Warn("reading project from remote store failed, serving fallback data",
			zap.String("project_id", id), zap.Error(err))
		project, _ = s.fallback.GetProject(ctx, id)
	}
	return project
}

func (s *projectService) CreateProject(ctx context.Context, req CreateProjectRequest) *Project {
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	project := &Project{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   createdAt,
		CreatedBy:   req.CreatedBy,
		Steps:       NewSteps(),
	}
	project.Recompute()

	if err := s.remote.CreateProject(ctx, project); err != nil {
		s.logger.Warn("persisting project to remote store failed, keeping it in fallback data",
			zap.String("project_id", project.ID), zap.Error(err))
		_ = s.fallback.CreateProject(ctx, project)
	}

	if s.notifier != nil {
		s.notifier.ProjectCreated(project)
	}
	return project
}

func (s *projectService) UpdateProjectStep(ctx context.Context, projectID string, stepID int, update StepUpdate) *Project {
	project := s.applyStepUpdate(ctx, projectID, stepID, update)
	if project != nil && s.notifier != nil {
		s.notifier.StepUpdated(project, stepID)
	}
	return project
}

func (s *projectService) DeleteDocument(ctx context.Context, projectID string, stepID int) *Project {
	// Removing a document reverts the step to incomplete with cleared
	// document fields; repeating the call is a no-op with the same result.
	project := s.applyStepUpdate(ctx, projectID, stepID, StepUpdate{
		Completed:    Bool(false),
		DocumentURL:  String(""),
		DocumentName: String(""),
	})
	if project != nil && s.notifier != nil {
		s.notifier.DocumentRemoved(project, stepID)
	}
	return project
}

func (s *projectService) applyStepUpdate(ctx context.Context, projectID string, stepID int, update StepUpdate) *Project {
	now := time.Now()

	found, err := s.remote.UpdateStep(ctx, projectID, stepID, update, now)
	if err != nil {
		s.logger.Warn("writing step to remote store failed, applying to fallback data",
			zap.String("project_id", projectID), zap.Int("step_id", stepID), zap.Error(err))
		found, _ = s.fallback.UpdateStep(ctx, projectID, stepID, update, now)
		if !found {
			return nil
		}
		project, _ := s.fallback.GetProject(ctx, projectID)
		return project
	}
	if !found {
		return nil
	}

	// Re-read so progress reflects persisted state rather than caller input.
	project, err := s.remote.GetProject(ctx, projectID)
	if err != nil {
		// The write went through, so the caller must never see a not-found.
		s.logger.Warn("re-reading project after step write failed, answering from fallback data",
			zap.String("project_id", projectID), zap.Error(err))
		if ok, _ := s.fallback.UpdateStep(ctx, projectID, stepID, update, now); ok {
			project, _ := s.fallback.GetProject(ctx, projectID)
			return project
		}
		// Unknown to the fallback store; acknowledge with the updated step
		// state alone.
		p := &Project{ID: projectID, Steps: NewSteps()}
		if step := p.StepByID(stepID); step != nil {
			step.applyUpdate(update, now)
		}
		p.Recompute()
		return p
	}
	return project
}
