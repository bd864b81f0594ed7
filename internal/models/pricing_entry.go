package models

// PricingUnit says what a pricing rate is charged against.
type PricingUnit string

const (
	UnitInputToken   PricingUnit = "input-token"
	UnitOutputToken  PricingUnit = "output-token"
	UnitFixedPerCall PricingUnit = "fixed-per-call"
)

// PricingEntry is one configured rate for a (provider, model, unit)
// combination, loaded at startup from the pricing_entries table.
// Token rates are USD per 1M tokens; fixed-per-call rates are USD per
// call, with Tier selecting an output-size tier (e.g. "1024x1024").
type PricingEntry struct {
	Provider ProviderID  `db:"provider"`
	Model    string      `db:"model"`
	Unit     PricingUnit `db:"unit"`
	Tier     *string     `db:"tier"`
	Rate     float64     `db:"rate"`
}
