package sqlite

import (
	"context"
	"fmt"

	"qrkot/internal/domain"
)

const donationColumns = `id, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date`

type donationRepo struct {
	q querier
}

func (r donationRepo) List(ctx context.Context) ([]domain.Donation, error) {
	return r.query(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY create_date, id`)
}

func (r donationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Donation, error) {
	return r.query(ctx, `SELECT `+donationColumns+` FROM donations WHERE user_id = ? ORDER BY create_date, id`, userID)
}

func (r donationRepo) ListOpen(ctx context.Context) ([]domain.Donation, error) {
	return r.query(ctx, `SELECT `+donationColumns+` FROM donations WHERE fully_invested = 0 ORDER BY create_date, id`)
}

func (r donationRepo) Create(ctx context.Context, d *domain.Donation) error {
	_, err := r.q.ExecContext(ctx, `
INSERT INTO donations (id, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.Comment, d.Amount, d.AllocatedAmount, d.Closed, toMillis(d.CreatedAt), nullMillis(d.ClosedAt))
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (r donationRepo) SaveAllocations(ctx context.Context, items []domain.Allocatable) error {
	for _, item := range items {
		if _, err := r.q.ExecContext(ctx, `
UPDATE donations SET invested_amount = ?, fully_invested = ?, close_date = ? WHERE id = ?`,
			item.AllocatedAmount, item.Closed, nullMillis(item.ClosedAt), item.ID); err != nil {
			return fmt.Errorf("save donation %s allocation: %w", item.ID, err)
		}
	}
	return nil
}

func (r donationRepo) query(ctx context.Context, query string, args ...any) ([]domain.Donation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := scanAllocatable(rows, &d.Allocatable, &d.UserID, &d.Comment); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
