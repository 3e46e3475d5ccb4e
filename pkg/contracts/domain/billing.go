package domain

import (
	"github.com/shopspring/decimal"
)

// BillingRecord is one row of the "New Data" extract.
// Empty UnitReference or FundType means the cell was absent.
type BillingRecord struct {
	Row           int             `json:"row"`
	UnitType      string          `json:"unit_type"`
	UnitReference string          `json:"unit_reference"`
	FundType      string          `json:"fund_type"`
	Name          string          `json:"name"`
	GrossDemanded decimal.Decimal `json:"gross_demanded"`
	Settled       decimal.Decimal `json:"settled"`
}

// UnitKey identifies one UnitAggregate.
type UnitKey struct {
	FundType      string
	UnitReference string
	Name          string
}

// UnitAggregate holds the summed amounts of every eligible record sharing a UnitKey.
type UnitAggregate struct {
	FundType           string          `json:"fund_type"`
	UnitReference      string          `json:"unit_reference"`
	Name               string          `json:"name"`
	TotalGrossDemanded decimal.Decimal `json:"total_gross_demanded"`
	TotalSettled       decimal.Decimal `json:"total_settled"`
}

// Key returns the grouping key of the aggregate.
func (u UnitAggregate) Key() UnitKey {
	return UnitKey{FundType: u.FundType, UnitReference: u.UnitReference, Name: u.Name}
}

// Outstanding is the demanded amount not yet settled. It is always derived
// from the two totals and never stored.
func (u UnitAggregate) Outstanding() decimal.Decimal {
	return u.TotalGrossDemanded.Sub(u.TotalSettled)
}

// FundAggregate summarizes the outstanding units of one fund.
type FundAggregate struct {
	FundType         string          `json:"fund_type"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	UnitCount        int             `json:"unit_count"`
}

// Totals is the triple of amounts carried by subtotal and grand-total rows.
type Totals struct {
	GrossDemanded decimal.Decimal `json:"gross_demanded"`
	Settled       decimal.Decimal `json:"settled"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// Add returns the totals with the unit's amounts included.
func (t Totals) Add(u UnitAggregate) Totals {
	return Totals{
		GrossDemanded: t.GrossDemanded.Add(u.TotalGrossDemanded),
		Settled:       t.Settled.Add(u.TotalSettled),
		Outstanding:   t.Outstanding.Add(u.Outstanding()),
	}
}

// Plus returns the element-wise sum of two totals.
func (t Totals) Plus(o Totals) Totals {
	return Totals{
		GrossDemanded: t.GrossDemanded.Add(o.GrossDemanded),
		Settled:       t.Settled.Add(o.Settled),
		Outstanding:   t.Outstanding.Add(o.Outstanding),
	}
}

// Equal reports whether every amount matches exactly.
func (t Totals) Equal(o Totals) bool {
	return t.GrossDemanded.Equal(o.GrossDemanded) &&
		t.Settled.Equal(o.Settled) &&
		t.Outstanding.Equal(o.Outstanding)
}
