package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrkot/internal/domain"
)

var epoch = time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newProject(id, name string, amount int64, minute int) *domain.Project {
	return &domain.Project{
		Allocatable: domain.NewAllocatable(id, amount, epoch.Add(time.Duration(minute)*time.Minute)),
		Name:        name,
		Description: "bowls and blankets",
	}
}

func TestStoreProjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Projects().Create(ctx, newProject("p1", "Food", 100, 0)))

	got, err := store.Projects().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Food", got.Name)
	assert.Equal(t, int64(100), got.Amount)
	assert.Equal(t, epoch, got.CreatedAt)
	assert.False(t, got.Closed)
	assert.Nil(t, got.ClosedAt)

	byName, err := store.Projects().GetByName(ctx, "Food")
	require.NoError(t, err)
	assert.Equal(t, "p1", byName.ID)

	_, err = store.Projects().GetByName(ctx, "Toys")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreRejectsDuplicateProjectName(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Projects().Create(ctx, newProject("p1", "Food", 100, 0)))
	err := store.Projects().Create(ctx, newProject("p2", "Food", 50, 1))
	require.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestStoreListOpenOldestFirstSkipsClosed(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Projects().Create(ctx, newProject("late", "Late", 10, 5)))
	require.NoError(t, store.Projects().Create(ctx, newProject("early", "Early", 10, 1)))
	require.NoError(t, store.Projects().Create(ctx, newProject("done", "Done", 10, 0)))

	closedAt := epoch.Add(time.Hour)
	require.NoError(t, store.Projects().SaveAllocations(ctx, []domain.Allocatable{
		{ID: "done", Amount: 10, AllocatedAmount: 10, Closed: true, ClosedAt: &closedAt},
	}))

	open, err := store.Projects().ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "early", open[0].ID)
	assert.Equal(t, "late", open[1].ID)

	done, err := store.Projects().GetByID(ctx, "done")
	require.NoError(t, err)
	assert.True(t, done.Closed)
	require.NotNil(t, done.ClosedAt)
	assert.Equal(t, closedAt, *done.ClosedAt)
}

func TestStoreDeleteOnlyUninvested(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Projects().Create(ctx, newProject("p1", "Food", 100, 0)))
	require.NoError(t, store.Projects().SaveAllocations(ctx, []domain.Allocatable{{ID: "p1", Amount: 100, AllocatedAmount: 1}}))

	require.ErrorIs(t, store.Projects().Delete(ctx, "p1"), domain.ErrNotFound)

	require.NoError(t, store.Projects().Create(ctx, newProject("p2", "Toys", 100, 1)))
	require.NoError(t, store.Projects().Delete(ctx, "p2"))
	_, err := store.Projects().GetByID(ctx, "p2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreDonationsByUser(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	for i, userID := range []string{"alice", "bob", "alice"} {
		d := &domain.Donation{
			Allocatable: domain.NewAllocatable(string(rune('a'+i)), int64(10*(i+1)), epoch.Add(time.Duration(i)*time.Minute)),
			UserID:      userID,
		}
		require.NoError(t, store.Donations().Create(ctx, d))
	}

	mine, err := store.Donations().ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(10), mine[0].Amount)
	assert.Equal(t, int64(30), mine[1].Amount)

	all, err := store.Donations().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStoreWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		require.NoError(t, tx.Projects().Create(ctx, newProject("p1", "Food", 100, 0)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	projects, err := store.Projects().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
