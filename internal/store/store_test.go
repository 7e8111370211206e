package store

// Notes:
// - Tests run against SQLite files in t.TempDir(); the PostgreSQL path
//   shares every query and is covered by store_integration_test.go.

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahgouba/dealerdocs"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "registry.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

// ---------------------------------------------------------------------------
// TestOpen - Driver selection
// ---------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		assert.Equal(t, DriverSQLite, db.Driver())
		// Migrate is idempotent.
		assert.NoError(t, db.Migrate(ctx))
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, Config{Driver: "mysql", DSN: "x"}, nil)
		assert.ErrorIs(t, err, ErrUnsupportedDriver)
	})

	t.Run("empty dsn", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, Config{Driver: DriverSQLite}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unreachable sqlite directory", func(t *testing.T) {
		t.Parallel()

		_, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "missing", "x.db")}, nil)
		assert.Error(t, err)
	})
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"registry.db", "file:registry.db?" + sqliteParams},
		{"file:registry.db", "file:registry.db?" + sqliteParams},
		{"file:registry.db?cache=shared", "file:registry.db?cache=shared&" + sqliteParams},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sqliteDSN(tt.input), tt.input)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

// ---------------------------------------------------------------------------
// TestRegistry - Reserve and Lookup
// ---------------------------------------------------------------------------

func TestRegistry_ReserveAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }
	reg := NewRegistry(db)

	id := dealerdocs.Identifier{Kind: dealerdocs.KindQuote, Serial: "000123"}
	require.NoError(t, reg.Reserve(ctx, id))

	err := reg.Reserve(ctx, id)
	assert.ErrorIs(t, err, dealerdocs.ErrIdentifierTaken)

	// Same serial, other kind is a different identifier.
	require.NoError(t, reg.Reserve(ctx, dealerdocs.Identifier{Kind: dealerdocs.KindInvoice, Serial: "000123"}))

	rec, err := reg.Lookup(ctx, "Q-000123")
	require.NoError(t, err)
	assert.Equal(t, id, rec.Identifier)
	assert.Equal(t, "Q-000123", rec.Formatted)
	assert.Equal(t, SourceReserved, rec.Source)
	assert.True(t, fixed.Equal(rec.CreatedAt), "CreatedAt = %s", rec.CreatedAt)
	assert.NotEqual(t, uuid.Nil, rec.ID)
}

func TestRegistry_LookupErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := NewRegistry(openTestDB(t))

	_, err := reg.Lookup(ctx, "Q-999999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Lookup(ctx, "Q-12")
	assert.ErrorIs(t, err, dealerdocs.ErrFormat)
}

func TestRegistry_RejectsBadKind(t *testing.T) {
	t.Parallel()

	err := NewRegistry(openTestDB(t)).Reserve(context.Background(), dealerdocs.Identifier{Kind: "receipt", Serial: "000001"})
	assert.ErrorIs(t, err, dealerdocs.ErrInvalidKind)
}

func TestRegistry_WithIssueUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := NewRegistry(openTestDB(t))

	// A frozen clock and random source produce the same serial every time,
	// so only the first issue can succeed.
	g := dealerdocs.NewGenerator(
		dealerdocs.WithClock(func() time.Time { return time.UnixMilli(42) }),
		dealerdocs.WithRandom(func(int) int { return 0 }),
	)

	id, err := g.IssueUnique(ctx, dealerdocs.KindInvoice, reg, 3)
	require.NoError(t, err)
	assert.Equal(t, "I-000042", id.String())

	_, err = g.IssueUnique(ctx, dealerdocs.KindInvoice, reg, 3)
	assert.ErrorIs(t, err, dealerdocs.ErrIssueExhausted)
}

// ---------------------------------------------------------------------------
// TestSQLSequence - Counter-based identifiers
// ---------------------------------------------------------------------------

func TestSQLSequence_Next(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	seq := NewSQLSequence(db)

	for _, want := range []string{"Q-000001", "Q-000002", "Q-000003"} {
		id, err := seq.Next(ctx, dealerdocs.KindQuote)
		require.NoError(t, err)
		assert.Equal(t, want, id.String())
	}

	inv, err := seq.Next(ctx, dealerdocs.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, "I-000001", inv.String(), "kinds keep separate counters")

	n, err := seq.Current(ctx, dealerdocs.KindQuote)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec, err := NewRegistry(db).Lookup(ctx, "Q-000002")
	require.NoError(t, err)
	assert.Equal(t, SourceSequence, rec.Source)
}

func TestSQLSequence_SkipsReserved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, NewRegistry(db).Reserve(ctx, dealerdocs.Identifier{Kind: dealerdocs.KindQuote, Serial: "000001"}))

	id, err := NewSQLSequence(db).Next(ctx, dealerdocs.KindQuote)
	require.NoError(t, err)
	assert.Equal(t, "Q-000002", id.String())
}

func TestSQLSequence_Exhausted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	seq := NewSQLSequence(db)

	_, err := db.ExecContext(ctx, `INSERT INTO counters (kind, value) VALUES ($1, $2)`, "quote", 999998)
	require.NoError(t, err)

	id, err := seq.Next(ctx, dealerdocs.KindQuote)
	require.NoError(t, err)
	assert.Equal(t, "Q-999999", id.String())

	_, err = seq.Next(ctx, dealerdocs.KindQuote)
	assert.ErrorIs(t, err, dealerdocs.ErrFormat)

	n, err := seq.Current(ctx, dealerdocs.KindQuote)
	require.NoError(t, err)
	assert.Equal(t, 999999, n, "failed call must roll back")
}

func TestSQLSequence_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seq := NewSQLSequence(openTestDB(t))

	const workers = 8
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Go(func() {
			id, err := seq.Next(ctx, dealerdocs.KindInvoice)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[id.String()], "duplicate %s", id)
			seen[id.String()] = true
		})
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	n, err := seq.Current(ctx, dealerdocs.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, workers, n)
}

func TestSQLSequence_CurrentUnused(t *testing.T) {
	t.Parallel()

	n, err := NewSQLSequence(openTestDB(t)).Current(context.Background(), dealerdocs.KindQuote)
	require.NoError(t, err)
	assert.Zero(t, n)
}
