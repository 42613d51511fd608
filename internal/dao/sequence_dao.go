package dao

import (
	"context"
	"fmt"

	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/database"
)

// Sequence names backing business numbers
const (
	SeqApplication = "app_seq"
	SeqBatch       = "batch_seq"
	SeqCard        = "card_seq"
)

var knownSequences = map[string]bool{
	SeqApplication: true,
	SeqBatch:       true,
	SeqCard:        true,
}

var queryNextSequence = database.DBQuery{
	ID:            "next_sequence",
	Query:         `UPDATE sequence_counter SET value = LAST_INSERT_ID(value + 1) WHERE name = ?`,
	PostgresQuery: `SELECT nextval(?)`,
}

// SequenceDAO allocates values from the database's atomic counters
type SequenceDAO struct {
	db *database.DB
}

// NewSequenceDAO creates a new SequenceDAO instance
func NewSequenceDAO(db *database.DB) *SequenceDAO {
	return &SequenceDAO{db: db}
}

// Next allocates the next value of the named sequence.
// It always runs on the pool, outside any transaction in ctx, so a rolled back
// operation leaves a gap instead of handing the same value out twice.
func (dao *SequenceDAO) Next(ctx context.Context, name string) (int64, error) {
	if !knownSequences[name] {
		return 0, fmt.Errorf("unknown sequence: %s", name)
	}

	query := dao.db.SQL(queryNextSequence)

	if dao.db.Type() == config.DatabaseTypePostgres {
		var value int64
		if err := dao.db.GetContext(ctx, &value, query, name); err != nil {
			return 0, fmt.Errorf("failed to allocate %s: %w", name, err)
		}
		return value, nil
	}

	result, err := dao.db.ExecContext(ctx, query, name)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s: %w", name, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, fmt.Errorf("sequence %s is not initialised: %w", name, ErrNotFound)
	}
	value, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s value: %w", name, err)
	}
	return value, nil
}
