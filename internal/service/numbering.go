package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/serviceerror"
)

// Business number prefixes
const (
	PrefixApplication = "APP"
	PrefixBatch       = "BAT"
	PrefixCard        = "CARD"

	numberWidth = 6
)

// Numbering mints human readable business numbers from the atomic sequences.
// Counters never reset; the year is a label only.
type Numbering struct {
	sequences SequenceStore
	clock     func() time.Time
}

// NewNumbering creates a Numbering over sequences
func NewNumbering(sequences SequenceStore, clock func() time.Time) *Numbering {
	return &Numbering{sequences: sequences, clock: clock}
}

// Next allocates the next value of sequence and formats it under prefix
func (n *Numbering) Next(ctx context.Context, sequence, prefix string) (string, error) {
	value, err := n.sequences.Next(ctx, sequence)
	if err != nil {
		return "", serviceerror.Storage("allocate "+sequence, err)
	}
	return Format(prefix, n.clock().Year(), value, numberWidth), nil
}

// Format joins prefix, year and n zero padded to width digits
func Format(prefix string, year int, n int64, width int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, width, n)
}

func (n *Numbering) nextApplication(ctx context.Context) (string, error) {
	return n.Next(ctx, dao.SeqApplication, PrefixApplication)
}

func (n *Numbering) nextBatch(ctx context.Context) (string, error) {
	return n.Next(ctx, dao.SeqBatch, PrefixBatch)
}

func (n *Numbering) nextCard(ctx context.Context) (string, error) {
	return n.Next(ctx, dao.SeqCard, PrefixCard)
}
