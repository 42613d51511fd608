package memory

import (
	"fmt"
	"sort"

	"github.com/cardops/card-issuance-api/internal/models"
)

// catalogRows is one editable catalog stored as a slice of values
type catalogRows interface {
	list(activeOnly bool) []models.CatalogEntry
	get(id int64) (models.CatalogEntry, bool)
	insert(entry models.CatalogEntry) error
	replace(entry models.CatalogEntry) error
}

type rows[T any, PT interface {
	*T
	models.CatalogEntry
}] struct {
	data *[]T
	// sortKey orders listings the same way the SQL catalogs do
	sortKey func(row *T) string
}

func (r rows[T, PT]) sorted(activeOnly bool) []T {
	out := make([]T, 0, len(*r.data))
	for _, row := range *r.data {
		if activeOnly && !PT(&row).Active() {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := r.sortKey(&out[i]), r.sortKey(&out[j])
		if ki != kj {
			return ki < kj
		}
		return PT(&out[i]).EntryID() < PT(&out[j]).EntryID()
	})
	return out
}

func (r rows[T, PT]) list(activeOnly bool) []models.CatalogEntry {
	sorted := r.sorted(activeOnly)
	entries := make([]models.CatalogEntry, len(sorted))
	for i := range sorted {
		entries[i] = PT(&sorted[i])
	}
	return entries
}

func (r rows[T, PT]) index(id int64) int {
	for i := range *r.data {
		if PT(&(*r.data)[i]).EntryID() == id {
			return i
		}
	}
	return -1
}

func (r rows[T, PT]) get(id int64) (models.CatalogEntry, bool) {
	i := r.index(id)
	if i < 0 {
		return nil, false
	}
	row := (*r.data)[i]
	return PT(&row), true
}

func (r rows[T, PT]) codeTaken(code string, exceptID int64) bool {
	if code == "" {
		return false
	}
	for i := range *r.data {
		row := PT(&(*r.data)[i])
		if row.EntryID() != exceptID && row.EntryCode() == code {
			return true
		}
	}
	return false
}

func (r rows[T, PT]) insert(entry models.CatalogEntry) error {
	row, ok := entry.(PT)
	if !ok {
		return fmt.Errorf("unexpected %T for %s", entry, entry.Kind())
	}
	if r.codeTaken(row.EntryCode(), 0) {
		return duplicate("%s code %s", entry.Kind(), row.EntryCode())
	}

	var maxID int64
	for i := range *r.data {
		if id := PT(&(*r.data)[i]).EntryID(); id > maxID {
			maxID = id
		}
	}
	row.SetEntryID(maxID + 1)
	*r.data = append(*r.data, *row)
	return nil
}

func (r rows[T, PT]) replace(entry models.CatalogEntry) error {
	row, ok := entry.(PT)
	if !ok {
		return fmt.Errorf("unexpected %T for %s", entry, entry.Kind())
	}
	i := r.index(row.EntryID())
	if i < 0 {
		return notFound(string(entry.Kind()), fmt.Sprint(row.EntryID()))
	}
	if r.codeTaken(row.EntryCode(), row.EntryID()) {
		return duplicate("%s code %s", entry.Kind(), row.EntryCode())
	}
	(*r.data)[i] = *row
	return nil
}

func (st *state) table(kind models.ReferenceKind) (catalogRows, error) {
	c := &st.catalog
	switch kind {
	case models.RefBranch:
		return rows[models.Branch, *models.Branch]{&c.Branches, func(b *models.Branch) string { return b.City + "\x00" + b.Name }}, nil
	case models.RefChannel:
		return rows[models.Channel, *models.Channel]{&c.Channels, func(ch *models.Channel) string { return ch.Name }}, nil
	case models.RefDeliveryMethod:
		return rows[models.DeliveryMethod, *models.DeliveryMethod]{&c.DeliveryMethods, func(d *models.DeliveryMethod) string { return d.Name }}, nil
	case models.RefVendor:
		return rows[models.Vendor, *models.Vendor]{&c.Vendors, func(v *models.Vendor) string { return v.VendorType + "\x00" + v.Name }}, nil
	case models.RefRejectReason:
		return rows[models.RejectReason, *models.RejectReason]{&c.RejectReasons, func(r *models.RejectReason) string { return r.Name }}, nil
	case models.RefCardProduct:
		return rows[models.CardProduct, *models.CardProduct]{&c.Products, func(p *models.CardProduct) string {
			return p.PaymentSystem + "\x00" + p.Level + "\x00" + p.Name
		}}, nil
	case models.RefTariffPlan:
		return rows[models.TariffPlan, *models.TariffPlan]{&c.Tariffs, func(t *models.TariffPlan) string { return t.Name }}, nil
	}
	return nil, fmt.Errorf("unknown reference kind: %s", kind)
}

// activeCatalog returns the active rows of every catalog, ordered like the listings
func (st *state) activeCatalog() models.ReferenceData {
	return models.ReferenceData{
		Branches:        activeRows[models.Branch](st, models.RefBranch),
		Channels:        activeRows[models.Channel](st, models.RefChannel),
		DeliveryMethods: activeRows[models.DeliveryMethod](st, models.RefDeliveryMethod),
		Vendors:         activeRows[models.Vendor](st, models.RefVendor),
		RejectReasons:   activeRows[models.RejectReason](st, models.RefRejectReason),
		Products:        activeRows[models.CardProduct](st, models.RefCardProduct),
		Tariffs:         activeRows[models.TariffPlan](st, models.RefTariffPlan),
	}
}

func activeRows[T any](st *state, kind models.ReferenceKind) []T {
	table, err := st.table(kind)
	if err != nil {
		return []T{}
	}
	entries := table.list(true)
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if row, ok := e.(*T); ok {
			out = append(out, *row)
		}
	}
	return out
}

// cloneCatalog copies every catalog slice so edits never reach a snapshot
func cloneCatalog(c models.ReferenceData) models.ReferenceData {
	return models.ReferenceData{
		Statuses:        append([]models.Status(nil), c.Statuses...),
		Branches:        append([]models.Branch(nil), c.Branches...),
		Channels:        append([]models.Channel(nil), c.Channels...),
		DeliveryMethods: append([]models.DeliveryMethod(nil), c.DeliveryMethods...),
		Vendors:         append([]models.Vendor(nil), c.Vendors...),
		RejectReasons:   append([]models.RejectReason(nil), c.RejectReasons...),
		Products:        append([]models.CardProduct(nil), c.Products...),
		Tariffs:         append([]models.TariffPlan(nil), c.Tariffs...),
	}
}
