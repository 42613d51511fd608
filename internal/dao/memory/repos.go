package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cardops/card-issuance-api/internal/models"
)

// References returns the reference catalog view of the store
func (s *Store) References() *References { return &References{s} }

// History returns the status ledger view of the store
func (s *Store) History() *History { return &History{s} }

// Clients returns the client view of the store
func (s *Store) Clients() *Clients { return &Clients{s} }

// Applications returns the application view of the store
func (s *Store) Applications() *Applications { return &Applications{s} }

// Batches returns the batch view of the store
func (s *Store) Batches() *Batches { return &Batches{s} }

// Cards returns the card view of the store
func (s *Store) Cards() *Cards { return &Cards{s} }

// Fees returns the fee operation view of the store
func (s *Store) Fees() *Fees { return &Fees{s} }

// Reports returns the report projection view of the store
func (s *Store) Reports() *Reports { return &Reports{s} }

// References serves catalog lookups
type References struct{ s *Store }

func (r *References) GetStatusByCode(ctx context.Context, entity models.EntityType, code string) (*models.Status, error) {
	var out *models.Status
	err := r.s.do(ctx, func(st *state) error {
		for _, status := range st.statuses {
			if status.EntityType == entity && status.Code == code {
				s := status
				out = &s
				return nil
			}
		}
		return notFound("status", string(entity)+"/"+code)
	})
	return out, err
}

func (r *References) GetStatusByID(ctx context.Context, id int64) (*models.Status, error) {
	var out *models.Status
	err := r.s.do(ctx, func(st *state) error {
		status, ok := st.statuses[id]
		if !ok {
			return notFound("status", fmt.Sprint(id))
		}
		out = &status
		return nil
	})
	return out, err
}

func (r *References) ListStatuses(ctx context.Context, entity models.EntityType) ([]models.Status, error) {
	var out []models.Status
	err := r.s.do(ctx, func(st *state) error {
		out = sortedStatuses(st.statuses, entity)
		return nil
	})
	return out, err
}

func (r *References) UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) error {
	return r.s.do(ctx, func(st *state) error {
		status, ok := st.statuses[id]
		if !ok {
			return notFound("status", fmt.Sprint(id))
		}
		status.Name = name
		status.SortOrder = sortOrder
		st.statuses[id] = status
		return nil
	})
}

func (r *References) Exists(ctx context.Context, kind models.ReferenceKind, id int64) (bool, error) {
	var exists bool
	err := r.s.do(ctx, func(st *state) error {
		table, err := st.table(kind)
		if err != nil {
			return err
		}
		_, exists = table.get(id)
		return nil
	})
	return exists, err
}

func (r *References) LoadAll(ctx context.Context) (*models.ReferenceData, error) {
	var out models.ReferenceData
	err := r.s.do(ctx, func(st *state) error {
		out = st.activeCatalog()
		out.Statuses = sortedStatuses(st.statuses, "")
		return nil
	})
	return &out, err
}

func (r *References) ListCatalog(ctx context.Context, kind models.ReferenceKind, activeOnly bool) ([]models.CatalogEntry, error) {
	var out []models.CatalogEntry
	err := r.s.do(ctx, func(st *state) error {
		table, err := st.table(kind)
		if err != nil {
			return err
		}
		out = table.list(activeOnly)
		return nil
	})
	return out, err
}

func (r *References) GetCatalogEntry(ctx context.Context, kind models.ReferenceKind, id int64) (models.CatalogEntry, error) {
	var out models.CatalogEntry
	err := r.s.do(ctx, func(st *state) error {
		table, err := st.table(kind)
		if err != nil {
			return err
		}
		entry, ok := table.get(id)
		if !ok {
			return notFound(string(kind), fmt.Sprint(id))
		}
		out = entry
		return nil
	})
	return out, err
}

func (r *References) CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error {
	return r.s.do(ctx, func(st *state) error {
		table, err := st.table(entry.Kind())
		if err != nil {
			return err
		}
		return table.insert(entry)
	})
}

func (r *References) UpdateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error {
	return r.s.do(ctx, func(st *state) error {
		table, err := st.table(entry.Kind())
		if err != nil {
			return err
		}
		return table.replace(entry)
	})
}

// History is the append-only ledger
type History struct{ s *Store }

func (h *History) Append(ctx context.Context, entry *models.StatusHistory) error {
	return h.s.do(ctx, func(st *state) error {
		st.historySeq++
		row := *entry
		row.ID = st.historySeq
		row.StatusCode = ""
		st.history = append(st.history, row)
		return nil
	})
}

func (h *History) ListByEntity(ctx context.Context, entity models.EntityType, entityID string) ([]models.StatusHistory, error) {
	var out []models.StatusHistory
	err := h.s.do(ctx, func(st *state) error {
		for _, row := range st.history {
			if row.EntityType == entity && row.EntityID == entityID {
				row.StatusCode = st.statusCode(row.StatusID)
				out = append(out, row)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.Before(out[j].ChangedAt) })
		return nil
	})
	return out, err
}

// Clients stores client profiles
type Clients struct{ s *Store }

func (c *Clients) Create(ctx context.Context, client *models.Client) error {
	return c.s.do(ctx, func(st *state) error {
		if _, ok := st.clients[client.ID]; ok {
			return duplicate("client %s", client.ID)
		}
		st.clients[client.ID] = *client
		return nil
	})
}

func (c *Clients) Update(ctx context.Context, client *models.Client) error {
	return c.s.do(ctx, func(st *state) error {
		existing, ok := st.clients[client.ID]
		if !ok {
			return notFound("client", client.ID)
		}
		existing.ClientFields = client.ClientFields
		existing.UpdatedAt = client.UpdatedAt
		st.clients[client.ID] = existing
		return nil
	})
}

func (c *Clients) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var out *models.Client
	err := c.s.do(ctx, func(st *state) error {
		client, ok := st.clients[id]
		if !ok {
			return notFound("client", id)
		}
		out = &client
		return nil
	})
	return out, err
}

func (c *Clients) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	var out []models.Client
	err := c.s.do(ctx, func(st *state) error {
		q := strings.ToLower(filter.Query)
		for _, client := range st.clients {
			if q != "" && !containsFold(q, client.FullName, deref(client.DocNumber)) {
				continue
			}
			out = append(out, client)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return nil
	})
	return page(out, filter.Limit, filter.Offset), len(out), err
}

// Applications stores card applications
type Applications struct{ s *Store }

func (a *Applications) Create(ctx context.Context, app *models.Application) error {
	return a.s.do(ctx, func(st *state) error {
		if _, ok := st.applications[app.ID]; ok {
			return duplicate("application %s", app.ID)
		}
		for _, existing := range st.applications {
			if existing.ApplicationNo == app.ApplicationNo {
				return duplicate("application number %s", app.ApplicationNo)
			}
		}
		st.applications[app.ID] = *app
		return nil
	})
}

func (a *Applications) Update(ctx context.Context, app *models.Application) error {
	return a.s.do(ctx, func(st *state) error {
		existing, ok := st.applications[app.ID]
		if !ok {
			return notFound("application", app.ID)
		}
		row := *app
		row.ApplicationNo = existing.ApplicationNo
		row.RequestedAt = existing.RequestedAt
		row.CreatedAt = existing.CreatedAt
		st.applications[app.ID] = row
		return nil
	})
}

func (a *Applications) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var out *models.Application
	err := a.s.do(ctx, func(st *state) error {
		app, ok := st.applications[id]
		if !ok {
			return notFound("application", id)
		}
		app.StatusCode = st.statusCode(app.StatusID)
		out = &app
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit of work already holds the store lock
func (a *Applications) GetForUpdate(ctx context.Context, id string) (*models.Application, error) {
	return a.GetByID(ctx, id)
}

func (a *Applications) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	var out []models.Application
	err := a.s.do(ctx, func(st *state) error {
		q := strings.ToLower(filter.Query)
		codes := make(map[string]bool, len(filter.StatusCodes))
		for _, code := range filter.StatusCodes {
			codes[code] = true
		}

		for _, app := range st.applications {
			app.StatusCode = st.statusCode(app.StatusID)
			if len(codes) > 0 && !codes[app.StatusCode] {
				continue
			}
			if filter.From != nil && app.RequestedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !app.RequestedAt.Before(*filter.To) {
				continue
			}
			if q != "" {
				client := st.clients[app.ClientID]
				if !containsFold(q, app.ApplicationNo, client.FullName, deref(client.DocNumber)) {
					continue
				}
			}
			out = append(out, app)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
		return nil
	})
	return page(out, filter.Limit, filter.Offset), len(out), err
}

// Batches stores issue batches and their items
type Batches struct{ s *Store }

func (b *Batches) Create(ctx context.Context, batch *models.Batch) error {
	return b.s.do(ctx, func(st *state) error {
		if _, ok := st.batches[batch.ID]; ok {
			return duplicate("batch %s", batch.ID)
		}
		row := *batch
		row.Items = nil
		st.batches[batch.ID] = row
		return nil
	})
}

func (b *Batches) Update(ctx context.Context, batch *models.Batch) error {
	return b.s.do(ctx, func(st *state) error {
		existing, ok := st.batches[batch.ID]
		if !ok {
			return notFound("batch", batch.ID)
		}
		existing.VendorID = batch.VendorID
		existing.StatusID = batch.StatusID
		existing.PlannedSendAt = batch.PlannedSendAt
		existing.SentAt = batch.SentAt
		existing.ReceivedAt = batch.ReceivedAt
		existing.UpdatedAt = batch.UpdatedAt
		st.batches[batch.ID] = existing
		return nil
	})
}

func (b *Batches) GetByID(ctx context.Context, id string) (*models.Batch, error) {
	var out *models.Batch
	err := b.s.do(ctx, func(st *state) error {
		batch, ok := st.batches[id]
		if !ok {
			return notFound("batch", id)
		}
		batch.StatusCode = st.statusCode(batch.StatusID)
		out = &batch
		return nil
	})
	return out, err
}

// GetByApplicationID returns the batch an application was added to
func (b *Batches) GetByApplicationID(ctx context.Context, applicationID string) (*models.Batch, error) {
	var out *models.Batch
	err := b.s.do(ctx, func(st *state) error {
		batchID, ok := st.itemByApp[applicationID]
		if !ok {
			return notFound("batch for application", applicationID)
		}
		batch := st.batches[batchID]
		batch.StatusCode = st.statusCode(batch.StatusID)
		out = &batch
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit of work already holds the store lock
func (b *Batches) GetForUpdate(ctx context.Context, id string) (*models.Batch, error) {
	return b.GetByID(ctx, id)
}

func (b *Batches) List(ctx context.Context, limit, offset int) ([]models.Batch, int, error) {
	var out []models.Batch
	err := b.s.do(ctx, func(st *state) error {
		for _, batch := range st.batches {
			batch.StatusCode = st.statusCode(batch.StatusID)
			out = append(out, batch)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return nil
	})
	return page(out, limit, offset), len(out), err
}

func (b *Batches) AddItem(ctx context.Context, item *models.IssueBatchItem) error {
	return b.s.do(ctx, func(st *state) error {
		if _, ok := st.batches[item.BatchID]; !ok {
			return notFound("batch", item.BatchID)
		}
		if batchID, ok := st.itemByApp[item.ApplicationID]; ok {
			return duplicate("application %s already in batch %s", item.ApplicationID, batchID)
		}
		st.items[item.ID] = *item
		st.itemByApp[item.ApplicationID] = item.BatchID
		return nil
	})
}

func (b *Batches) ListItems(ctx context.Context, batchID string) ([]models.IssueBatchItem, error) {
	var out []models.IssueBatchItem
	err := b.s.do(ctx, func(st *state) error {
		for _, item := range st.items {
			if item.BatchID == batchID {
				out = append(out, item)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
		return nil
	})
	return out, err
}

func (b *Batches) CountItems(ctx context.Context, batchID string) (int, error) {
	items, err := b.ListItems(ctx, batchID)
	return len(items), err
}

// Cards stores cards
type Cards struct{ s *Store }

func (c *Cards) Create(ctx context.Context, card *models.Card) error {
	return c.s.do(ctx, func(st *state) error {
		if _, ok := st.cards[card.ID]; ok {
			return duplicate("card %s", card.ID)
		}
		if existing, ok := st.cardByApp[card.ApplicationID]; ok {
			return duplicate("application %s already has card %s", card.ApplicationID, existing)
		}
		st.cards[card.ID] = *card
		st.cardByApp[card.ApplicationID] = card.ID
		return nil
	})
}

func (c *Cards) Update(ctx context.Context, card *models.Card) error {
	return c.s.do(ctx, func(st *state) error {
		existing, ok := st.cards[card.ID]
		if !ok {
			return notFound("card", card.ID)
		}
		row := *card
		row.CardNo = existing.CardNo
		row.ApplicationID = existing.ApplicationID
		row.CreatedAt = existing.CreatedAt
		st.cards[card.ID] = row
		return nil
	})
}

func (c *Cards) GetByID(ctx context.Context, id string) (*models.Card, error) {
	var out *models.Card
	err := c.s.do(ctx, func(st *state) error {
		card, ok := st.cards[id]
		if !ok {
			return notFound("card", id)
		}
		card.StatusCode = st.statusCode(card.StatusID)
		out = &card
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the unit of work already holds the store lock
func (c *Cards) GetForUpdate(ctx context.Context, id string) (*models.Card, error) {
	return c.GetByID(ctx, id)
}

func (c *Cards) GetByApplicationID(ctx context.Context, applicationID string) (*models.Card, error) {
	var id string
	err := c.s.do(ctx, func(st *state) error {
		var ok bool
		if id, ok = st.cardByApp[applicationID]; !ok {
			return notFound("card for application", applicationID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.GetByID(ctx, id)
}

func (c *Cards) List(ctx context.Context, limit, offset int) ([]models.Card, int, error) {
	var out []models.Card
	err := c.s.do(ctx, func(st *state) error {
		for _, card := range st.cards {
			card.StatusCode = st.statusCode(card.StatusID)
			out = append(out, card)
		}
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i], out[j]
			switch {
			case a.IssuedAt == nil && b.IssuedAt == nil:
				return a.CreatedAt.After(b.CreatedAt)
			case a.IssuedAt == nil:
				return false
			case b.IssuedAt == nil:
				return true
			}
			return a.IssuedAt.After(*b.IssuedAt)
		})
		return nil
	})
	return page(out, limit, offset), len(out), err
}

// Fees records fee operations
type Fees struct{ s *Store }

func (f *Fees) Create(ctx context.Context, op *models.FeeOperation) error {
	return f.s.do(ctx, func(st *state) error {
		st.fees = append(st.fees, *op)
		return nil
	})
}

func (f *Fees) ListByApplication(ctx context.Context, applicationID string) ([]models.FeeOperation, error) {
	var out []models.FeeOperation
	err := f.s.do(ctx, func(st *state) error {
		for _, op := range st.fees {
			if op.ApplicationID == applicationID {
				out = append(out, op)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
		return nil
	})
	return out, err
}

// Reports builds the report projection
type Reports struct{ s *Store }

func (r *Reports) ListApplicationFacts(ctx context.Context, from, to time.Time) ([]models.ApplicationFact, error) {
	var out []models.ApplicationFact
	err := r.s.do(ctx, func(st *state) error {
		reasons := make(map[int64]string, len(st.catalog.RejectReasons))
		for _, rr := range st.catalog.RejectReasons {
			reasons[rr.ID] = rr.Name
		}

		for _, app := range st.applications {
			if app.RequestedAt.Before(from) || !app.RequestedAt.Before(to) {
				continue
			}
			fact := models.ApplicationFact{
				ApplicationID: app.ID,
				RequestedAt:   app.RequestedAt,
				StatusCode:    st.statusCode(app.StatusID),
				DecisionAt:    app.DecisionAt,
			}
			if app.RejectReasonID != nil {
				if name, ok := reasons[*app.RejectReasonID]; ok {
					fact.RejectReasonName = &name
				}
			}
			if cardID, ok := st.cardByApp[app.ID]; ok {
				card := st.cards[cardID]
				fact.IssuedAt = card.IssuedAt
				fact.DeliveredAt = card.DeliveredAt
				fact.HandedAt = card.HandedAt
				fact.ActivatedAt = card.ActivatedAt
			}
			out = append(out, fact)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
		return nil
	})
	return out, err
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
