package core

import "time"

// DefaultCosts is the single record of last-used unit prices, used to
// prefill new entries.
type DefaultCosts struct {
	MilkPricePerLiter    float64   `json:"milk_price_per_liter"`
	PremixPricePerPacket float64   `json:"premix_price_per_packet"`
	CoffeePricePerLiter  float64   `json:"coffee_price_per_liter"`
	CupPrice             float64   `json:"cup_price"`
	SpoonPrice           float64   `json:"spoon_price"`
	PricePerCupSold      float64   `json:"price_per_cup_sold"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultCostsPatch is a partial update of the defaults record.
type DefaultCostsPatch struct {
	MilkPricePerLiter    *float64 `json:"milk_price_per_liter,omitempty"`
	PremixPricePerPacket *float64 `json:"premix_price_per_packet,omitempty"`
	CoffeePricePerLiter  *float64 `json:"coffee_price_per_liter,omitempty"`
	CupPrice             *float64 `json:"cup_price,omitempty"`
	SpoonPrice           *float64 `json:"spoon_price,omitempty"`
	PricePerCupSold      *float64 `json:"price_per_cup_sold,omitempty"`
}

// Apply returns d with the patch's non-nil fields written over it.
func (p DefaultCostsPatch) Apply(d DefaultCosts) DefaultCosts {
	if p.MilkPricePerLiter != nil {
		d.MilkPricePerLiter = *p.MilkPricePerLiter
	}
	if p.PremixPricePerPacket != nil {
		d.PremixPricePerPacket = *p.PremixPricePerPacket
	}
	if p.CoffeePricePerLiter != nil {
		d.CoffeePricePerLiter = *p.CoffeePricePerLiter
	}
	if p.CupPrice != nil {
		d.CupPrice = *p.CupPrice
	}
	if p.SpoonPrice != nil {
		d.SpoonPrice = *p.SpoonPrice
	}
	if p.PricePerCupSold != nil {
		d.PricePerCupSold = *p.PricePerCupSold
	}
	return d
}

// FullPatch turns a complete record into a patch that sets every price.
func (d DefaultCosts) FullPatch() DefaultCostsPatch {
	return DefaultCostsPatch{
		MilkPricePerLiter:    ptr(d.MilkPricePerLiter),
		PremixPricePerPacket: ptr(d.PremixPricePerPacket),
		CoffeePricePerLiter:  ptr(d.CoffeePricePerLiter),
		CupPrice:             ptr(d.CupPrice),
		SpoonPrice:           ptr(d.SpoonPrice),
		PricePerCupSold:      ptr(d.PricePerCupSold),
	}
}

// Prefill builds a blank form for date with the default unit prices.
// Quantities stay at zero.
func (d DefaultCosts) Prefill(date Date) EntryInput {
	return EntryInput{
		EntryDate:            date,
		MilkPricePerLiter:    d.MilkPricePerLiter,
		PremixPricePerPacket: d.PremixPricePerPacket,
		CoffeePricePerLiter:  d.CoffeePricePerLiter,
		CupPrice:             d.CupPrice,
		SpoonPrice:           d.SpoonPrice,
		PricePerCupSold:      d.PricePerCupSold,
	}
}
