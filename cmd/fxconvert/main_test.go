package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"softy/internal/fx"
)

type stubRates struct {
	rate float64
	err  error
}

func (s *stubRates) Latest(_ context.Context, base string) (fx.Rates, error) {
	if s.err != nil {
		return fx.Rates{}, s.err
	}
	return fx.Rates{Base: base, Rates: map[string]float64{"USD": s.rate}}, nil
}

func TestFormatConversion(t *testing.T) {
	c := fx.Conversion{
		From:        "CNY",
		To:          "USD",
		Amount:      100,
		Display:     "14.00 USD",
		RateDisplay: "1 CNY = 0.1400 USD",
		Direction:   fx.DirectionUp,
		At:          time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	want := "09:30:00  100.00 CNY = 14.00 USD  (1 CNY = 0.1400 USD)  ↑"
	if got := formatConversion(c); got != want {
		t.Errorf("formatConversion() = %q, want %q", got, want)
	}
}

func TestConvertOnce(t *testing.T) {
	src := &stubRates{rate: 0.14}
	c := fx.NewConverter(src, fx.NewRateTracker(0.02), nil)
	var out bytes.Buffer

	if err := convertOnce(context.Background(), &out, c, "CNY", "USD", 100); err != nil {
		t.Fatal(err)
	}
	src.rate = 0.15
	if err := convertOnce(context.Background(), &out, c, "CNY", "USD", 100); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "notice: CNY/USD moved more than 2%") {
		t.Errorf("output missing notice:\n%s", out.String())
	}

	out.Reset()
	src.err = errors.New("connection refused")
	if err := convertOnce(context.Background(), &out, c, "CNY", "USD", 100); err == nil {
		t.Fatal("expected error")
	}
	if lines := strings.Count(out.String(), "\n"); lines != 1 || !strings.Contains(out.String(), "error: connection refused") {
		t.Errorf("want one error line, got %q", out.String())
	}
}
