package projects

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	CreateProject(ctx context.Context, project *Project) error
	UpdateStep(ctx context.Context, projectID string, stepID int, update StepUpdate, updatedAt time.Time) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// InitSchema creates the project tables if they do not exist.
func InitSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS project_steps (
			project_id TEXT NOT NULL REFERENCES projects(id),
			step_id INT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			document_url TEXT,
			document_name TEXT,
			updated_at TIMESTAMPTZ,
			PRIMARY KEY (project_id, step_id)
		);
	`)
	return err
}

// projectRow mirrors the projects table.
type projectRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	CreatedBy   string    `db:"created_by"`
}

// stepRow mirrors the project_steps table.
type stepRow struct {
	ProjectID    string         `db:"project_id"`
	StepID       int            `db:"step_id"`
	Completed    bool           `db:"completed"`
	DocumentURL  sql.NullString `db:"document_url"`
	DocumentName sql.NullString `db:"document_name"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

// mapStepRow validates and converts a raw step row. Rows naming a step id
// outside the fixed workflow are rejected rather than silently carried.
func mapStepRow(row stepRow) (ProjectStep, error) {
	if !ValidStepID(row.StepID) {
		return ProjectStep{}, fmt.Errorf("malformed step row: project %s references unknown step %d", row.ProjectID, row.StepID)
	}
	step := ProjectStep{
		StepID:       row.StepID,
		Completed:    row.Completed,
		DocumentURL:  row.DocumentURL.String,
		DocumentName: row.DocumentName.String,
	}
	if row.UpdatedAt.Valid {
		t := row.UpdatedAt.Time
		step.UpdatedAt = &t
	}
	return step, nil
}

// assembleSteps merges persisted step rows onto the fixed definition set so
// every project reports exactly one step per definition, in order.
func assembleSteps(rows []stepRow) ([]ProjectStep, error) {
	byID := make(map[int]ProjectStep, len(rows))
	for _, row := range rows {
		step, err := mapStepRow(row)
		if err != nil {
			return nil, err
		}
		byID[step.StepID] = step
	}

	steps := NewSteps()
	for i := range steps {
		if step, ok := byID[steps[i].StepID]; ok {
			steps[i] = step
		}
	}
	return steps, nil
}

func (r *postgresRepository) ListProjects(ctx context.Context) ([]Project, error) {
	var rows []projectRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT id, title, description, created_at, created_by FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(rows))
	for _, row := range rows {
		var stepRows []stepRow
		err := r.db.SelectContext(ctx, &stepRows,
			"SELECT project_id, step_id, completed, document_url, document_name, updated_at FROM project_steps WHERE project_id = $1 ORDER BY step_id",
			row.ID)
		if err != nil {
			return nil, err
		}
		steps, err := assembleSteps(stepRows)
		if err != nil {
			return nil, err
		}
		project := Project{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
			CreatedBy:   row.CreatedBy,
			Steps:       steps,
		}
		project.Recompute()
		projects = append(projects, project)
	}
	return projects, nil
}

func (r *postgresRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	var row projectRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, title, description, created_at, created_by FROM projects WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stepRows []stepRow
	err = r.db.SelectContext(ctx, &stepRows,
		"SELECT project_id, step_id, completed, document_url, document_name, updated_at FROM project_steps WHERE project_id = $1 ORDER BY step_id",
		id)
	if err != nil {
		return nil, err
	}
	steps, err := assembleSteps(stepRows)
	if err != nil {
		return nil, err
	}

	project := &Project{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		CreatedBy:   row.CreatedBy,
		Steps:       steps,
	}
	project.Recompute()
	return project, nil
}

func (r *postgresRepository) CreateProject(ctx context.Context, project *Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO projects (id, title, description, created_at, created_by) VALUES ($1, $2, $3, $4, $5)",
		project.ID, project.Title, project.Description, project.CreatedAt, project.CreatedBy)
	if err != nil {
		return err
	}

	for _, step := range project.Steps {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO project_steps (project_id, step_id, completed) VALUES ($1, $2, $3)",
			project.ID, step.StepID, step.Completed)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) UpdateStep(ctx context.Context, projectID string, stepID int, update StepUpdate, updatedAt time.Time) (bool, error) {
	// Only the fields present in the update are written; nil pointers keep
	// the stored value.
	res, err := r.db.ExecContext(ctx,
		`UPDATE project_steps
		 SET completed = CASE WHEN $1 THEN $2 ELSE completed END,
		     document_url = CASE WHEN $3 THEN $4 ELSE document_url END,
		     document_name = CASE WHEN $5 THEN $6 ELSE document_name END,
		     updated_at = $7
		 WHERE project_id = $8 AND step_id = $9`,
		update.Completed != nil, update.Completed != nil && *update.Completed,
		update.DocumentURL != nil, nullIfEmptyPtr(update.DocumentURL),
		update.DocumentName != nil, nullIfEmptyPtr(update.DocumentName),
		updatedAt, projectID, stepID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func nullIfEmptyPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: *s != ""}
}
