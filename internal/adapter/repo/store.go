package repo

import (
	"context"
	"fmt"

	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/sqlinline"
)

// allocationLockKey is the advisory lock shared by every write transaction.
const allocationLockKey int64 = 0x51524b6f74

// StorePG implements domain.Store on top of PostgreSQL.
type StorePG struct {
	runner *infra.SQLRunner
}

// NewStore creates a store that executes through the given runner.
func NewStore(runner *infra.SQLRunner) *StorePG {
	return &StorePG{runner: runner}
}

// WithinTx runs fn in a transaction holding the allocation advisory lock, so
// open-record snapshots taken inside fn stay valid until commit.
func (s *StorePG) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	return s.runner.InTx(ctx, func(ctx context.Context, exec infra.SQLExecutor) error {
		if _, err := exec.Exec(ctx, sqlinline.QLockAllocation, allocationLockKey); err != nil {
			return fmt.Errorf("acquire allocation lock: %w", err)
		}
		return fn(ctx, txPG{sql: exec})
	})
}

func (s *StorePG) Projects() domain.ProjectRepository {
	return NewProjectRepository(s.runner)
}

func (s *StorePG) Donations() domain.DonationRepository {
	return NewDonationRepository(s.runner)
}

type txPG struct {
	sql infra.SQLExecutor
}

func (t txPG) Projects() domain.ProjectRepository   { return NewProjectRepository(t.sql) }
func (t txPG) Donations() domain.DonationRepository { return NewDonationRepository(t.sql) }

type scanner interface {
	Scan(dest ...any) error
}

func scanAllocatable(row scanner, a *domain.Allocatable, extra ...any) error {
	dest := []any{&a.ID}
	dest = append(dest, extra...)
	dest = append(dest, &a.Amount, &a.AllocatedAmount, &a.Closed, &a.CreatedAt, &a.ClosedAt)
	return row.Scan(dest...)
}

var _ domain.Store = (*StorePG)(nil)
