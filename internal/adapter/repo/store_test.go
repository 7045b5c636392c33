package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/sqlinline"
)

type txEvent struct {
	kind  string
	query string
	args  []any
}

// txConn hands out transactions that record every call in order.
type txConn struct {
	stubSQL
	events  []txEvent
	lockErr error
}

func (c *txConn) Begin(context.Context) (pgx.Tx, error) {
	c.events = append(c.events, txEvent{kind: "begin"})
	return &txStub{conn: c}, nil
}

type txStub struct {
	pgx.Tx
	conn *txConn
}

func (t *txStub) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	t.conn.events = append(t.conn.events, txEvent{kind: "exec", query: query, args: args})
	if t.conn.lockErr != nil && strings.Contains(query, "pg_advisory_xact_lock") {
		return pgconn.CommandTag{}, t.conn.lockErr
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *txStub) Commit(context.Context) error {
	t.conn.events = append(t.conn.events, txEvent{kind: "commit"})
	return nil
}

func (t *txStub) Rollback(context.Context) error {
	t.conn.events = append(t.conn.events, txEvent{kind: "rollback"})
	return nil
}

func body(query string) string {
	parts := strings.SplitN(strings.TrimSpace(query), "\n", 2)
	return parts[1]
}

func kinds(events []txEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.kind)
	}
	return out
}

func saveOne(ctx context.Context, tx domain.Tx) error {
	return tx.Projects().SaveAllocations(ctx, []domain.Allocatable{{ID: "p1", Amount: 10, AllocatedAmount: 10, Closed: true}})
}

func TestWithinTxLocksBeforeWorkAndCommits(t *testing.T) {
	conn := &txConn{}
	store := NewStore(infra.NewSQLRunner(conn, zerolog.Nop()))

	require.NoError(t, store.WithinTx(context.Background(), saveOne))

	require.Equal(t, []string{"begin", "exec", "exec", "commit"}, kinds(conn.events))
	lock := conn.events[1]
	assert.Equal(t, body(sqlinline.QLockAllocation), lock.query)
	assert.Equal(t, []any{allocationLockKey}, lock.args)
	assert.Equal(t, body(sqlinline.QSaveProjectAllocation), conn.events[2].query)
	assert.Empty(t, conn.execs, "nothing may run outside the transaction")
}

func TestWithinTxRollsBackWhenWorkFails(t *testing.T) {
	conn := &txConn{}
	store := NewStore(infra.NewSQLRunner(conn, zerolog.Nop()))
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		if err := saveOne(ctx, tx); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"begin", "exec", "exec", "rollback"}, kinds(conn.events))
	assert.Equal(t, body(sqlinline.QLockAllocation), conn.events[1].query)
}

func TestWithinTxSkipsWorkWhenLockFails(t *testing.T) {
	conn := &txConn{lockErr: errors.New("lock timeout")}
	store := NewStore(infra.NewSQLRunner(conn, zerolog.Nop()))
	called := false

	err := store.WithinTx(context.Background(), func(context.Context, domain.Tx) error {
		called = true
		return nil
	})

	require.ErrorContains(t, err, "acquire allocation lock")
	assert.False(t, called)
	assert.Equal(t, []string{"begin", "exec", "rollback"}, kinds(conn.events))
}
