package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogEntry is a row of one of the editable lookup catalogs
type CatalogEntry interface {
	Kind() ReferenceKind
	EntryID() int64
	SetEntryID(id int64)
	// EntryCode is the unique business code, empty for catalogs without one
	EntryCode() string
	Active() bool
	// Normalize trims text fields and checks the required ones
	Normalize() error
}

var catalogPaths = map[ReferenceKind]string{
	RefBranch:         "branches",
	RefChannel:        "channels",
	RefDeliveryMethod: "delivery-methods",
	RefVendor:         "vendors",
	RefRejectReason:   "reject-reasons",
	RefCardProduct:    "products",
	RefTariffPlan:     "tariffs",
}

// CatalogKinds lists every editable catalog in a stable order
func CatalogKinds() []ReferenceKind {
	return []ReferenceKind{
		RefBranch,
		RefChannel,
		RefDeliveryMethod,
		RefVendor,
		RefRejectReason,
		RefCardProduct,
		RefTariffPlan,
	}
}

// IsValid reports whether k names a known catalog
func (k ReferenceKind) IsValid() bool {
	_, ok := catalogPaths[k]
	return ok
}

// PathSegment is the URL segment the catalog is served under
func (k ReferenceKind) PathSegment() string {
	return catalogPaths[k]
}

// NewCatalogEntry returns an empty entry of the given kind carrying the creation defaults
func NewCatalogEntry(kind ReferenceKind) (CatalogEntry, error) {
	switch kind {
	case RefBranch:
		return &Branch{IsActive: true}, nil
	case RefChannel:
		return &Channel{IsActive: true}, nil
	case RefDeliveryMethod:
		return &DeliveryMethod{BaseCost: decimal.Zero, IsActive: true}, nil
	case RefVendor:
		return &Vendor{SLADays: 3, IsActive: true}, nil
	case RefRejectReason:
		return &RejectReason{IsActive: true}, nil
	case RefCardProduct:
		return &CardProduct{Currency: "RUB", TermMonths: 36, IsActive: true}, nil
	case RefTariffPlan:
		return &TariffPlan{IssueFee: decimal.Zero, MonthlyFee: decimal.Zero, DeliverySubsidy: decimal.Zero, IsActive: true}, nil
	}
	return nil, fmt.Errorf("unknown reference kind: %s", kind)
}

const (
	maxCodeLen = 50
	maxNameLen = 200
)

func checkCodeName(code, name *string) error {
	*code = strings.TrimSpace(*code)
	*name = strings.TrimSpace(*name)
	switch {
	case *code == "" || len(*code) > maxCodeLen:
		return fmt.Errorf("code must be 1 to %d characters", maxCodeLen)
	case *name == "" || len(*name) > maxNameLen:
		return fmt.Errorf("name must be 1 to %d characters", maxNameLen)
	}
	return nil
}

func checkNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

func (b *Branch) Kind() ReferenceKind { return RefBranch }
func (b *Branch) EntryID() int64      { return b.ID }
func (b *Branch) SetEntryID(id int64) { b.ID = id }
func (b *Branch) EntryCode() string   { return b.Code }
func (b *Branch) Active() bool        { return b.IsActive }

func (b *Branch) Normalize() error {
	b.City = strings.TrimSpace(b.City)
	b.Address = strings.TrimSpace(b.Address)
	if err := checkCodeName(&b.Code, &b.Name); err != nil {
		return err
	}
	if b.City == "" {
		return errors.New("city is required")
	}
	return nil
}

func (c *Channel) Kind() ReferenceKind { return RefChannel }
func (c *Channel) EntryID() int64      { return c.ID }
func (c *Channel) SetEntryID(id int64) { c.ID = id }
func (c *Channel) EntryCode() string   { return c.Code }
func (c *Channel) Active() bool        { return c.IsActive }
func (c *Channel) Normalize() error    { return checkCodeName(&c.Code, &c.Name) }

func (d *DeliveryMethod) Kind() ReferenceKind { return RefDeliveryMethod }
func (d *DeliveryMethod) EntryID() int64      { return d.ID }
func (d *DeliveryMethod) SetEntryID(id int64) { d.ID = id }
func (d *DeliveryMethod) EntryCode() string   { return d.Code }
func (d *DeliveryMethod) Active() bool        { return d.IsActive }

func (d *DeliveryMethod) Normalize() error {
	if err := checkCodeName(&d.Code, &d.Name); err != nil {
		return err
	}
	if d.SLADays < 0 {
		return errors.New("slaDays must not be negative")
	}
	return checkNonNegative("baseCost", d.BaseCost)
}

func (v *Vendor) Kind() ReferenceKind { return RefVendor }
func (v *Vendor) EntryID() int64      { return v.ID }
func (v *Vendor) SetEntryID(id int64) { v.ID = id }
func (v *Vendor) EntryCode() string   { return "" }
func (v *Vendor) Active() bool        { return v.IsActive }

func (v *Vendor) Normalize() error {
	v.VendorType = strings.TrimSpace(v.VendorType)
	v.Name = strings.TrimSpace(v.Name)
	switch {
	case v.VendorType == "":
		return errors.New("vendorType is required")
	case v.Name == "" || len(v.Name) > maxNameLen:
		return fmt.Errorf("name must be 1 to %d characters", maxNameLen)
	case v.SLADays < 0:
		return errors.New("slaDays must not be negative")
	}
	return nil
}

func (r *RejectReason) Kind() ReferenceKind { return RefRejectReason }
func (r *RejectReason) EntryID() int64      { return r.ID }
func (r *RejectReason) SetEntryID(id int64) { r.ID = id }
func (r *RejectReason) EntryCode() string   { return r.Code }
func (r *RejectReason) Active() bool        { return r.IsActive }
func (r *RejectReason) Normalize() error    { return checkCodeName(&r.Code, &r.Name) }

func (p *CardProduct) Kind() ReferenceKind { return RefCardProduct }
func (p *CardProduct) EntryID() int64      { return p.ID }
func (p *CardProduct) SetEntryID(id int64) { p.ID = id }
func (p *CardProduct) EntryCode() string   { return p.Code }
func (p *CardProduct) Active() bool        { return p.IsActive }

func (p *CardProduct) Normalize() error {
	p.PaymentSystem = strings.ToUpper(strings.TrimSpace(p.PaymentSystem))
	p.Level = strings.TrimSpace(p.Level)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if err := checkCodeName(&p.Code, &p.Name); err != nil {
		return err
	}
	switch {
	case p.PaymentSystem == "":
		return errors.New("paymentSystem is required")
	case p.Level == "":
		return errors.New("level is required")
	case len(p.Currency) != 3:
		return errors.New("currency must be a 3 letter code")
	case p.TermMonths <= 0:
		return errors.New("termMonths must be positive")
	}
	return nil
}

func (t *TariffPlan) Kind() ReferenceKind { return RefTariffPlan }
func (t *TariffPlan) EntryID() int64      { return t.ID }
func (t *TariffPlan) SetEntryID(id int64) { t.ID = id }
func (t *TariffPlan) EntryCode() string   { return t.Code }
func (t *TariffPlan) Active() bool        { return t.IsActive }

func (t *TariffPlan) Normalize() error {
	if err := checkCodeName(&t.Code, &t.Name); err != nil {
		return err
	}
	if err := checkNonNegative("issueFee", t.IssueFee); err != nil {
		return err
	}
	if err := checkNonNegative("monthlyFee", t.MonthlyFee); err != nil {
		return err
	}
	return checkNonNegative("deliverySubsidy", t.DeliverySubsidy)
}
