package projects

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the degraded-mode project store used when the remote
// database is unreachable. It is constructed once per process and injected
// explicitly; tests reset it via Reset.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []Project
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.Reset()
	return s
}

// Reset restores the fixed example data set.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = seedProjects()
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Project, len(s.projects))
	for i := range s.projects {
		out[i] = cloneProject(s.projects[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			p := cloneProject(s.projects[i])
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateProject(ctx context.Context, project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append(s.projects, cloneProject(*project))
	return nil
}

func (s *MemoryStore) UpdateStep(ctx context.Context, projectID string, stepID int, update StepUpdate, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID != projectID {
			continue
		}
		step := s.projects[i].StepByID(stepID)
		if step == nil {
			return false, nil
		}
		step.applyUpdate(update, updatedAt)
		s.projects[i].Recompute()
		return true, nil
	}
	return false, nil
}

func cloneProject(p Project) Project {
	out := p
	out.Steps = make([]ProjectStep, len(p.Steps))
	copy(out.Steps, p.Steps)
	for i := range out.Steps {
		if p.Steps[i].UpdatedAt != nil {
			t := *p.Steps[i].UpdatedAt
			out.Steps[i].UpdatedAt = &t
		}
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

// seedProjects builds the fixed example projects served in fallback mode.
func seedProjects() []Project {
	projects := []Project{
		{
			ID:          "1",
			Title:       "Solar Installation Project - ABC Corp",
			Description: "Installation of 50kW solar panels on the commercial building",
			CreatedAt:   day(2025, time.April, 1),
			CreatedBy:   "1",
			Steps: []ProjectStep{
				{StepID: 1, Completed: true, DocumentURL: "#", DocumentName: "application-form.pdf", UpdatedAt: datePtr(2025, time.April, 1)},
				{StepID: 2, Completed: true, DocumentURL: "#", DocumentName: "geda-approval.pdf", UpdatedAt: datePtr(2025, time.April, 2)},
				{StepID: 3, Completed: true, DocumentURL: "#", DocumentName: "verification-docs.zip", UpdatedAt: datePtr(2025, time.April, 3)},
				{StepID: 4}, {StepID: 5}, {StepID: 6}, {StepID: 7}, {StepID: 8},
			},
		},
		{
			ID:          "2",
			Title:       "Wind Energy Assessment - XYZ Inc",
			Description: "Feasibility study for wind energy implementation",
			CreatedAt:   day(2025, time.March, 28),
			CreatedBy:   "1",
			Steps: []ProjectStep{
				{StepID: 1, Completed: true, DocumentURL: "#", DocumentName: "assessment-request.pdf", UpdatedAt: datePtr(2025, time.March, 28)},
				{StepID: 2}, {StepID: 3}, {StepID: 4}, {StepID: 5}, {StepID: 6}, {StepID: 7}, {StepID: 8},
			},
		},
		{
			ID:          "3",
			Title:       "Residential Solar Project - Green Homes",
			Description: "10kW solar installation for residential complex",
			CreatedAt:   day(2025, time.March, 15),
			CreatedBy:   "1",
			Steps: []ProjectStep{
				{StepID: 1, Completed: true, DocumentURL: "#", DocumentName: "application.pdf", UpdatedAt: datePtr(2025, time.March, 15)},
				{StepID: 2, Completed: true, DocumentURL: "#", DocumentName: "geda-approval.pdf", UpdatedAt: datePtr(2025, time.March, 16)},
				{StepID: 3, Completed: true, DocumentURL: "#", DocumentName: "documentation.zip", UpdatedAt: datePtr(2025, time.March, 18)},
				{StepID: 4, Completed: true, DocumentURL: "#", DocumentName: "feasibility-report.pdf", UpdatedAt: datePtr(2025, time.March, 20)},
				{StepID: 5, Completed: true, DocumentURL: "#", DocumentName: "cei-approval.pdf", UpdatedAt: datePtr(2025, time.March, 22)},
				{StepID: 6}, {StepID: 7}, {StepID: 8},
			},
		},
	}
	for i := range projects {
		projects[i].Recompute()
	}
	return projects
}
