package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
)

// Sources of registry rows.
const (
	SourceReserved = "reserved" // timestamp identifier claimed through Reserve
	SourceSequence = "sequence" // issued by SQLSequence
)

// Record is one registry row.
type Record struct {
	ID         uuid.UUID             `json:"id"`
	Identifier dealerdocs.Identifier `json:"-"`
	Formatted  string                `json:"identifier"`
	Source     string                `json:"source"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// Registry records every identifier handed out so none is issued twice.
type Registry struct {
	db *DB
}

// Compile-time interface check.
var _ dealerdocs.Reserver = (*Registry)(nil)

// NewRegistry creates a Registry on db. Migrate must have run.
func NewRegistry(db *DB) *Registry {
	return &Registry{db: db}
}

// Reserve claims id. Returns dealerdocs.ErrIdentifierTaken when it is
// already recorded.
func (r *Registry) Reserve(ctx context.Context, id dealerdocs.Identifier) error {
	if err := id.Kind.Validate(); err != nil {
		return err
	}
	err := insertIdentifier(ctx, r.db, id, SourceReserved, r.db.now())
	if isUniqueViolation(err) {
		r.db.logger.Debug("identifier collision", zap.String("identifier", id.String()))
		return fmt.Errorf("%w: %s", dealerdocs.ErrIdentifierTaken, id)
	}
	return err
}

// Lookup returns the registry row for a formatted identifier such as
// "Q-000123". Returns ErrNotFound when it was never issued here.
func (r *Registry) Lookup(ctx context.Context, formatted string) (*Record, error) {
	if _, ok := dealerdocs.ParseIdentifier(formatted); !ok {
		return nil, fmt.Errorf("%w: %q is not a formatted identifier", dealerdocs.ErrFormat, formatted)
	}

	query := `
		SELECT id, kind, serial, formatted, source, created_at
		FROM identifiers
		WHERE formatted = $1
	`

	var rec Record
	var kind string
	err := r.db.QueryRowContext(ctx, query, formatted).Scan(
		&rec.ID,
		&kind,
		&rec.Identifier.Serial,
		&rec.Formatted,
		&rec.Source,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, formatted)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up identifier: %w", err)
	}
	rec.Identifier.Kind = dealerdocs.Kind(kind)

	return &rec, nil
}

// execer is satisfied by *sql.DB, *sql.Tx and *DB.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertIdentifier(ctx context.Context, ex execer, id dealerdocs.Identifier, source string, at time.Time) error {
	query := `
		INSERT INTO identifiers (id, kind, serial, formatted, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := ex.ExecContext(ctx, query,
		uuid.New(),
		string(id.Kind),
		id.Serial,
		id.String(),
		source,
		at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record identifier: %w", err)
	}
	return nil
}
