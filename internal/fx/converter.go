package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"softy/internal/log"
)

// Conversion is one computed conversion.
type Conversion struct {
	From         string    `json:"from"`
	To           string    `json:"to"`
	Amount       float64   `json:"amount"`
	Rate         float64   `json:"rate"`
	PreviousRate *float64  `json:"previous_rate,omitempty"`
	Result       float64   `json:"result"`
	Display      string    `json:"display"`
	RateDisplay  string    `json:"rate_display"`
	Direction    Direction `json:"direction,omitempty"`
	Notice       string    `json:"notice,omitempty"`
	At           time.Time `json:"at"`
}

// Converter fetches a rate, converts, tracks rate moves and records
// history. It is safe for concurrent use.
type Converter struct {
	source  RateSource
	tracker *RateTracker
	history *History
	logger  *log.Logger
	now     func() time.Time
}

func NewConverter(source RateSource, tracker *RateTracker, logger *log.Logger) *Converter {
	if tracker == nil {
		tracker = NewRateTracker(DefaultNoticeThreshold)
	}
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentFX)
	}
	return &Converter{
		source:  source,
		tracker: tracker,
		history: &History{},
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Converter) History() *History { return c.history }

func (c *Converter) Tracker() *RateTracker { return c.tracker }

// Convert multiplies amount by the current from->to rate. Same-currency
// conversions use rate 1 without a fetch.
func (c *Converter) Convert(ctx context.Context, from, to string, amount float64) (Conversion, error) {
	from, to = NormalizeCode(from), NormalizeCode(to)
	for _, code := range []string{from, to} {
		if !Supported(code) {
			return Conversion{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
		}
	}

	rate := 1.0
	if from != to {
		rates, err := c.source.Latest(ctx, from)
		if err != nil {
			c.logger.WarnContext(ctx, "Exchange rate fetch failed",
				log.NewFields().WithConversion(from, to, 0).WithError(err).ToSlice()...)
			return Conversion{}, err
		}
		if rate, err = rates.Rate(to); err != nil {
			return Conversion{}, err
		}
	}

	result := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2)
	conv := Conversion{
		From:        from,
		To:          to,
		Amount:      amount,
		Rate:        rate,
		Result:      result.InexactFloat64(),
		Display:     result.StringFixed(2) + " " + to,
		RateDisplay: fmt.Sprintf("1 %s = %s %s", from, decimal.NewFromFloat(rate).StringFixed(4), to),
		At:          c.now(),
	}

	obs := c.tracker.Observe(from, to, rate)
	if obs.HasPrevious {
		prev := obs.Previous
		conv.PreviousRate = &prev
		conv.Direction = obs.Direction
	}
	if obs.Notice != "" {
		conv.Notice = obs.Notice
		c.logger.InfoContext(ctx, "Exchange rate moved past threshold",
			log.NewFields().WithConversion(from, to, rate).ToSlice()...)
	}

	c.history.Add(conv)
	return conv, nil
}
