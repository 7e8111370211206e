package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
)

// SQLSequence issues sequential identifiers from the counters table. Each
// call runs in one transaction: the counter moves only when the identifier
// is recorded, so a failed call leaves no gap.
type SQLSequence struct {
	db *DB
}

// Compile-time interface check.
var _ dealerdocs.Sequencer = (*SQLSequence)(nil)

// NewSQLSequence creates a sequence on db. Migrate must have run.
func NewSQLSequence(db *DB) *SQLSequence {
	return &SQLSequence{db: db}
}

// Next returns the next identifier of kind. Serials already in the
// registry (for example reserved timestamp identifiers) are skipped.
// When the counter would pass 999999 the transaction rolls back and the
// error wraps dealerdocs.ErrFormat.
func (s *SQLSequence) Next(ctx context.Context, kind dealerdocs.Kind) (dealerdocs.Identifier, error) {
	if err := kind.Validate(); err != nil {
		return dealerdocs.Identifier{}, err
	}

	var id dealerdocs.Identifier
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO counters (kind, value) VALUES ($1, 0) ON CONFLICT (kind) DO NOTHING`,
			string(kind),
		); err != nil {
			return fmt.Errorf("failed to initialize counter: %w", err)
		}

		query := `SELECT value FROM counters WHERE kind = $1`
		if s.db.driver == DriverPostgres {
			query += ` FOR UPDATE`
		}
		var count int
		if err := tx.QueryRowContext(ctx, query, string(kind)).Scan(&count); err != nil {
			return fmt.Errorf("failed to read counter: %w", err)
		}

		for {
			serial, err := dealerdocs.IssueSequential(count)
			if err != nil {
				return fmt.Errorf("%s counter exhausted: %w", kind, err)
			}
			count++
			candidate := dealerdocs.Identifier{Kind: kind, Serial: serial}

			taken, err := identifierExists(ctx, tx, candidate.String())
			if err != nil {
				return err
			}
			if taken {
				s.db.logger.Debug("sequence skipped reserved identifier", zap.String("identifier", candidate.String()))
				continue
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE counters SET value = $1 WHERE kind = $2`, count, string(kind),
			); err != nil {
				return fmt.Errorf("failed to advance counter: %w", err)
			}
			if err := insertIdentifier(ctx, tx, candidate, SourceSequence, s.db.now()); err != nil {
				return err
			}
			id = candidate
			return nil
		}
	})
	if err != nil {
		return dealerdocs.Identifier{}, err
	}
	return id, nil
}

// Current returns how many identifiers of kind the sequence has issued.
func (s *SQLSequence) Current(ctx context.Context, kind dealerdocs.Kind) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE kind = $1`, string(kind)).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return count, nil
}

func identifierExists(ctx context.Context, tx *sql.Tx, formatted string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM identifiers WHERE formatted = $1`, formatted).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check identifier: %w", err)
	}
	return true, nil
}
