package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of an entry date.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// EntryInput is what the stall owner types into the daily form: five
	// consumable lines as (quantity, unit price) pairs plus the sales line.
	EntryInput struct {
		EntryDate            Date    `json:"entry_date"`
		MilkLiters           float64 `json:"milk_liters"`
		MilkPricePerLiter    float64 `json:"milk_price_per_liter"`
		PremixPackets        float64 `json:"premix_packets"`
		PremixPricePerPacket float64 `json:"premix_price_per_packet"`
		CoffeeLiters         float64 `json:"coffee_liters"`
		CoffeePricePerLiter  float64 `json:"coffee_price_per_liter"`
		CupsUsed             float64 `json:"cups_used"`
		CupPrice             float64 `json:"cup_price"`
		SpoonsUsed           float64 `json:"spoons_used"`
		SpoonPrice           float64 `json:"spoon_price"`
		CupsSold             float64 `json:"cups_sold"`
		PricePerCupSold      float64 `json:"price_per_cup_sold"`
	}

	// DailyEntry is one persisted day of the stall. Derived fields are
	// optional: a record read from an external source may lack them.
	DailyEntry struct {
		ID string `json:"id"`
		EntryInput

		MilkTotalCost   *float64 `json:"milk_total_cost,omitempty"`
		PremixTotalCost *float64 `json:"premix_total_cost,omitempty"`
		CoffeeTotalCost *float64 `json:"coffee_total_cost,omitempty"`
		CupsTotalCost   *float64 `json:"cups_total_cost,omitempty"`
		SpoonsTotalCost *float64 `json:"spoons_total_cost,omitempty"`
		TotalCost       *float64 `json:"total_cost,omitempty"`
		TotalRevenue    *float64 `json:"total_revenue,omitempty"`
		ProfitLoss      *float64 `json:"profit_loss,omitempty"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// EntryPatch carries a partial update; nil fields are left untouched.
	EntryPatch struct {
		EntryDate            *Date    `json:"entry_date,omitempty"`
		MilkLiters           *float64 `json:"milk_liters,omitempty"`
		MilkPricePerLiter    *float64 `json:"milk_price_per_liter,omitempty"`
		PremixPackets        *float64 `json:"premix_packets,omitempty"`
		PremixPricePerPacket *float64 `json:"premix_price_per_packet,omitempty"`
		CoffeeLiters         *float64 `json:"coffee_liters,omitempty"`
		CoffeePricePerLiter  *float64 `json:"coffee_price_per_liter,omitempty"`
		CupsUsed             *float64 `json:"cups_used,omitempty"`
		CupPrice             *float64 `json:"cup_price,omitempty"`
		SpoonsUsed           *float64 `json:"spoons_used,omitempty"`
		SpoonPrice           *float64 `json:"spoon_price,omitempty"`
		CupsSold             *float64 `json:"cups_sold,omitempty"`
		PricePerCupSold      *float64 `json:"price_per_cup_sold,omitempty"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid entry date")
	ErrEntryNotFound = errors.New("entry not found")
	ErrDuplicateDate = errors.New("an entry already exists for this date")
	ErrEmptyEntryID  = errors.New("empty entry id")
	ErrInvalidPeriod = errors.New("invalid period")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Timestamps coming from hosted stores carry a time part.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate only requires a date: numeric fields were coerced on input.
func (in EntryInput) Validate() error {
	return in.EntryDate.Validate()
}

// Derive fills every derived field from the raw lines.
func (e *DailyEntry) Derive() {
	t := Calculate(e.EntryInput)
	e.MilkTotalCost = ptr(t.Lines[LineMilk])
	e.PremixTotalCost = ptr(t.Lines[LinePremix])
	e.CoffeeTotalCost = ptr(t.Lines[LineCoffee])
	e.CupsTotalCost = ptr(t.Lines[LineCups])
	e.SpoonsTotalCost = ptr(t.Lines[LineSpoons])
	e.TotalCost = ptr(t.TotalCost)
	e.TotalRevenue = ptr(t.TotalRevenue)
	e.ProfitLoss = ptr(t.ProfitLoss)
}

// Apply merges the non-nil fields of p into in.
func (p EntryPatch) Apply(in EntryInput) EntryInput {
	if p.EntryDate != nil {
		in.EntryDate = *p.EntryDate
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.MilkLiters, p.MilkLiters)
	set(&in.MilkPricePerLiter, p.MilkPricePerLiter)
	set(&in.PremixPackets, p.PremixPackets)
	set(&in.PremixPricePerPacket, p.PremixPricePerPacket)
	set(&in.CoffeeLiters, p.CoffeeLiters)
	set(&in.CoffeePricePerLiter, p.CoffeePricePerLiter)
	set(&in.CupsUsed, p.CupsUsed)
	set(&in.CupPrice, p.CupPrice)
	set(&in.SpoonsUsed, p.SpoonsUsed)
	set(&in.SpoonPrice, p.SpoonPrice)
	set(&in.CupsSold, p.CupsSold)
	set(&in.PricePerCupSold, p.PricePerCupSold)
	return in
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p == EntryPatch{}
}

func ptr(v float64) *float64 { return &v }

// value reads an optional derived total, absent counts as zero.
func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
