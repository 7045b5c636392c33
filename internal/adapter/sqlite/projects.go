package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qrkot/internal/domain"
)

const projectColumns = `id, name, description, full_amount, invested_amount, fully_invested, create_date, close_date`

type projectRepo struct {
	q querier
}

func (r projectRepo) List(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM charity_projects ORDER BY create_date, id`)
}

func (r projectRepo) ListOpen(ctx context.Context) ([]domain.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM charity_projects WHERE fully_invested = 0 ORDER BY create_date, id`)
}

func (r projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.get(ctx, `SELECT `+projectColumns+` FROM charity_projects WHERE id = ?`, id)
}

func (r projectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return r.get(ctx, `SELECT `+projectColumns+` FROM charity_projects WHERE name = ?`, name)
}

func (r projectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO charity_projects (id, name, description, full_amount, invested_amount, fully_invested, create_date, close_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Amount, p.AllocatedAmount, p.Closed, toMillis(p.CreatedAt), nullMillis(p.ClosedAt))
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r projectRepo) Update(ctx context.Context, p *domain.Project) error {
	res, err := r.q.ExecContext(ctx, `
UPDATE charity_projects
SET name = ?, description = ?, full_amount = ?, fully_invested = ?, close_date = ?
WHERE id = ?`,
		p.Name, p.Description, p.Amount, p.Closed, nullMillis(p.ClosedAt), p.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return rowsAffected(res)
}

func (r projectRepo) SaveAllocations(ctx context.Context, items []domain.Allocatable) error {
	for _, item := range items {
		if _, err := r.q.ExecContext(ctx, `
UPDATE charity_projects SET invested_amount = ?, fully_invested = ?, close_date = ? WHERE id = ?`,
			item.AllocatedAmount, item.Closed, nullMillis(item.ClosedAt), item.ID); err != nil {
			return fmt.Errorf("save project %s allocation: %w", item.ID, err)
		}
	}
	return nil
}

func (r projectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM charity_projects WHERE id = ? AND invested_amount = 0`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return rowsAffected(res)
}

func (r projectRepo) get(ctx context.Context, query string, arg any) (*domain.Project, error) {
	var p domain.Project
	err := scanAllocatable(r.q.QueryRowContext(ctx, query, arg), &p.Allocatable, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &p, nil
}

func (r projectRepo) query(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := scanAllocatable(rows, &p.Allocatable, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
