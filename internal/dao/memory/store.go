// Package memory is an in-process implementation of the issuance stores.
// It backs the "memory" database type and the lifecycle tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cardops/card-issuance-api/internal/dao"
	"github.com/cardops/card-issuance-api/internal/models"
)

type txKey struct{}

// Store holds every table in memory behind a single lock.
// A unit of work holds the lock for its whole duration and restores a
// snapshot when it fails, so writes are all-or-nothing.
type Store struct {
	mu        sync.Mutex
	state     *state
	sequences map[string]*atomic.Int64
}

type state struct {
	statuses     map[int64]models.Status
	catalog      models.ReferenceData
	clients      map[string]models.Client
	applications map[string]models.Application
	batches      map[string]models.Batch
	items        map[string]models.IssueBatchItem
	itemByApp    map[string]string
	cards        map[string]models.Card
	cardByApp    map[string]string
	history      []models.StatusHistory
	historySeq   int64
	fees         []models.FeeOperation
}

// NewStore creates a store seeded with the given reference data
func NewStore(ref *models.ReferenceData) *Store {
	st := &state{
		statuses:     make(map[int64]models.Status),
		clients:      make(map[string]models.Client),
		applications: make(map[string]models.Application),
		batches:      make(map[string]models.Batch),
		items:        make(map[string]models.IssueBatchItem),
		itemByApp:    make(map[string]string),
		cards:        make(map[string]models.Card),
		cardByApp:    make(map[string]string),
	}
	st.seed(ref)

	return &Store{
		state: st,
		sequences: map[string]*atomic.Int64{
			dao.SeqApplication: {},
			dao.SeqBatch:       {},
			dao.SeqCard:        {},
		},
	}
}

func (st *state) seed(ref *models.ReferenceData) {
	st.catalog = cloneCatalog(*ref)
	for _, s := range ref.Statuses {
		st.statuses[s.ID] = s
	}
}

// clone copies every table. Rows are values, so copying the maps is enough.
func (st *state) clone() *state {
	c := &state{
		statuses:     make(map[int64]models.Status, len(st.statuses)),
		catalog:      cloneCatalog(st.catalog),
		clients:      make(map[string]models.Client, len(st.clients)),
		applications: make(map[string]models.Application, len(st.applications)),
		batches:      make(map[string]models.Batch, len(st.batches)),
		items:        make(map[string]models.IssueBatchItem, len(st.items)),
		itemByApp:    make(map[string]string, len(st.itemByApp)),
		cards:        make(map[string]models.Card, len(st.cards)),
		cardByApp:    make(map[string]string, len(st.cardByApp)),
		history:      append([]models.StatusHistory(nil), st.history...),
		historySeq:   st.historySeq,
		fees:         append([]models.FeeOperation(nil), st.fees...),
	}
	for k, v := range st.statuses {
		c.statuses[k] = v
	}
	for k, v := range st.clients {
		c.clients[k] = v
	}
	for k, v := range st.applications {
		c.applications[k] = v
	}
	for k, v := range st.batches {
		c.batches[k] = v
	}
	for k, v := range st.items {
		c.items[k] = v
	}
	for k, v := range st.itemByApp {
		c.itemByApp[k] = v
	}
	for k, v := range st.cards {
		c.cards[k] = v
	}
	for k, v := range st.cardByApp {
		c.cardByApp[k] = v
	}
	return c
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// WithTransaction runs fn holding the store lock. Nested calls join the outer unit of work.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// do runs fn against the current state, taking the lock unless ctx already holds it
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Next increments the named counter. Counters live outside the snapshot and never roll back.
func (s *Store) Next(_ context.Context, name string) (int64, error) {
	counter, ok := s.sequences[name]
	if !ok {
		return 0, fmt.Errorf("unknown sequence: %s", name)
	}
	return counter.Add(1), nil
}

func (st *state) statusCode(id int64) string {
	return st.statuses[id].Code
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, dao.ErrNotFound)
}

func duplicate(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), dao.ErrDuplicate)
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func sortedStatuses(statuses map[int64]models.Status, entity models.EntityType) []models.Status {
	out := make([]models.Status, 0, len(statuses))
	for _, s := range statuses {
		if entity == "" || s.EntityType == entity {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType != out[j].EntityType {
			return out[i].EntityType < out[j].EntityType
		}
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
