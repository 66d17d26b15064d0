package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"softy/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{
			name:      "both values provided",
			query:     url.Values{"year": {"2024"}, "month": {"12"}},
			wantYear:  2024,
			wantMonth: 12,
		},
		{
			name:      "only year",
			query:     url.Values{"year": {"2023"}},
			wantYear:  2023,
			wantMonth: 0, // will be current month
		},
		{
			name:      "out of range month is kept",
			query:     url.Values{"year": {"2024"}, "month": {"13"}},
			wantYear:  2024,
			wantMonth: 13,
		},
		{
			name:      "malformed year falls back",
			query:     url.Values{"year": {"twenty"}, "month": {"5"}},
			wantYear:  0, // will be current year
			wantMonth: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseMonthParams(tt.query)

			if result.Year == 0 {
				t.Error("Year should not be zero")
			}
			if tt.wantYear != 0 && result.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", result.Year, tt.wantYear)
			}
			if tt.wantMonth != 0 && result.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", result.Month, tt.wantMonth)
			}
		})
	}
}

func newParser(t *testing.T, body, contentType string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, `{"entry_date": "2024-05-01", "cups_sold": 42.5, "note": null}`, "application/json")

	if !p.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := p.Get("entry_date"); got != "2024-05-01" {
		t.Errorf("Get('entry_date') = %q", got)
	}
	if got := p.Get("cups_sold"); got != "42.5" {
		t.Errorf("Get('cups_sold') = %q, want '42.5'", got)
	}
	if p.Has("note") {
		t.Error("null values should count as absent")
	}
	if p.Has("missing") {
		t.Error("Has('missing') = true")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "entry_date=2024-05-01&cups_sold=12%2C5&note=a%01b", "application/x-www-form-urlencoded")

	if p.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := p.Number("cups_sold"); got != 12.5 {
		t.Errorf("Number('cups_sold') = %v, want 12.5", got)
	}
	if got := p.Get("note"); got != "ab" {
		t.Errorf("control characters should be stripped, got %q", got)
	}
	if !p.Has("entry_date") || p.Has("milk_liters") {
		t.Error("Has() does not reflect the submitted fields")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if val := p.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"entry_date":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected an error for truncated JSON")
	}
}

func TestParseEntryInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, in core.EntryInput)
	}{
		{
			name: "numbers are coerced",
			body: `{"entry_date":"2024-05-01","milk_liters":"2","milk_price_per_liter":"abc","cups_sold":"7cups","price_per_cup_sold":10}`,
			check: func(t *testing.T, in core.EntryInput) {
				if in.MilkLiters != 2 || in.MilkPricePerLiter != 0 || in.CupsSold != 7 || in.PricePerCupSold != 10 {
					t.Errorf("in = %+v", in)
				}
				if in.EntryDate != core.NewDate(2024, 5, 1) {
					t.Errorf("date = %v", in.EntryDate)
				}
			},
		},
		{
			name:    "missing date",
			body:    `{"cups_sold":1}`,
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "malformed date",
			body:    "entry_date=01-05-2024",
			wantErr: core.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseEntryInput(newParser(t, tt.body, ""))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEntryInput() error = %v", err)
			}
			tt.check(t, in)
		})
	}
}

func TestParseEntryPatch(t *testing.T) {
	patch, err := parseEntryPatch(newParser(t, `{"cups_sold":"30","spoon_price":null}`, ""))
	if err != nil {
		t.Fatal(err)
	}
	if patch.CupsSold == nil || *patch.CupsSold != 30 {
		t.Errorf("CupsSold = %v", patch.CupsSold)
	}
	if patch.SpoonPrice != nil || patch.EntryDate != nil || patch.MilkLiters != nil {
		t.Errorf("only sent fields should be set: %+v", patch)
	}

	if _, err := parseEntryPatch(newParser(t, `{"entry_date":"yesterday"}`, "")); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestParseDefaultsPatch(t *testing.T) {
	patch := parseDefaultsPatch(newParser(t, "milk_price_per_liter=55&cup_price=", ""))
	if patch.MilkPricePerLiter == nil || *patch.MilkPricePerLiter != 55 {
		t.Errorf("MilkPricePerLiter = %v", patch.MilkPricePerLiter)
	}
	if patch.CupPrice == nil || *patch.CupPrice != 0 {
		t.Errorf("a blank field sets zero, got %v", patch.CupPrice)
	}
	if patch.SpoonPrice != nil {
		t.Errorf("SpoonPrice = %v, want nil", patch.SpoonPrice)
	}
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		limit, offset         string
		wantLimit, wantOffset int
	}{
		{"", "", 30, 0},
		{"10", "20", 10, 20},
		{"-1", "-5", 30, 0},
		{"5000", "x", maxListLimit, 0},
	}
	for _, tt := range tests {
		limit, offset := pageParams(tt.limit, tt.offset, 30)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("pageParams(%q, %q) = %d, %d, want %d, %d", tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"DELETE allowed with multiple", http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequireGET(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead} {
		if RequireGET(httptest.NewRequest(m, "/test", nil)) != nil {
			t.Errorf("RequireGET should allow %s", m)
		}
	}
	if RequireGET(httptest.NewRequest(http.MethodPost, "/test", nil)) == nil {
		t.Error("RequireGET should reject POST")
	}
}
