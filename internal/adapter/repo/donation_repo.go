package repo

import (
	"context"
	"fmt"

	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Create inserts a new donation record.
func (r *DonationRepositoryPG) Create(ctx context.Context, d *domain.Donation) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertDonation,
		d.ID, d.UserID, d.Comment, d.Amount, d.AllocatedAmount, d.Closed, d.CreatedAt, d.ClosedAt)
	return err
}

func (r *DonationRepositoryPG) List(ctx context.Context) ([]domain.Donation, error) {
	return r.query(ctx, sqlinline.QListDonations)
}

// ListByUser returns the donations made by one user, oldest first.
func (r *DonationRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.Donation, error) {
	return r.query(ctx, sqlinline.QListUserDonations, userID)
}

func (r *DonationRepositoryPG) ListOpen(ctx context.Context) ([]domain.Donation, error) {
	return r.query(ctx, sqlinline.QListOpenDonations)
}

func (r *DonationRepositoryPG) SaveAllocations(ctx context.Context, items []domain.Allocatable) error {
	for _, item := range items {
		if _, err := r.sql.Exec(ctx, sqlinline.QSaveDonationAllocation,
			item.ID, item.AllocatedAmount, item.Closed, item.ClosedAt); err != nil {
			return fmt.Errorf("save donation %s allocation: %w", item.ID, err)
		}
	}
	return nil
}

func (r *DonationRepositoryPG) query(ctx context.Context, query string, args ...any) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := scanAllocatable(rows, &d.Allocatable, &d.UserID, &d.Comment); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
