package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/sqlinline"
)

// ProjectRepositoryPG implements domain.ProjectRepository using PostgreSQL.
type ProjectRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewProjectRepository creates a new project repo.
func NewProjectRepository(sql infra.SQLExecutor) *ProjectRepositoryPG {
	return &ProjectRepositoryPG{sql: sql}
}

// List returns every project, oldest first.
func (r *ProjectRepositoryPG) List(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, sqlinline.QListProjects)
}

// ListOpen returns projects still waiting for money, oldest first.
func (r *ProjectRepositoryPG) ListOpen(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, sqlinline.QListOpenProjects)
}

func (r *ProjectRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanProject(r.sql.QueryRow(ctx, sqlinline.QGetProjectByID, id))
}

func (r *ProjectRepositoryPG) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return scanProject(r.sql.QueryRow(ctx, sqlinline.QGetProjectByName, name))
}

// Create inserts a new project record.
func (r *ProjectRepositoryPG) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertProject,
		p.ID, p.Name, p.Description, p.Amount, p.AllocatedAmount, p.Closed, p.CreatedAt, p.ClosedAt)
	if infra.IsUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	return err
}

// Update stores editable fields. Allocation columns are left to SaveAllocations.
func (r *ProjectRepositoryPG) Update(ctx context.Context, p *domain.Project) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateProject,
		p.ID, p.Name, p.Description, p.Amount, p.Closed, p.ClosedAt)
	if infra.IsUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepositoryPG) SaveAllocations(ctx context.Context, items []domain.Allocatable) error {
	for _, item := range items {
		if _, err := r.sql.Exec(ctx, sqlinline.QSaveProjectAllocation,
			item.ID, item.AllocatedAmount, item.Closed, item.ClosedAt); err != nil {
			return fmt.Errorf("save project %s allocation: %w", item.ID, err)
		}
	}
	return nil
}

// Delete removes a project that has not received any money.
func (r *ProjectRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteProject, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectRepositoryPG) query(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := scanAllocatable(rows, &p.Allocatable, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := scanAllocatable(row, &p.Allocatable, &p.Name, &p.Description); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
