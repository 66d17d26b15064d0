// This file implements utilities for parsing and validating HTTP request
// data. Numeric fields are coerced, never rejected: the daily form is typed
// in a hurry and blanks mean zero.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"softy/internal/core"
)

// maxBodyBytes bounds request bodies; an entry form is a few hundred bytes.
const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using
// the current date as defaults. Out-of-range months are kept so that the
// report service can reject them.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	return MonthParams{
		Year:  queryInt(query, "year", now.Year()),
		Month: queryInt(query, "month", int(now.Month())),
	}
}

// queryInt reads an integer parameter, falling back to def when it is
// missing or malformed.
func queryInt(query url.Values, key string, def int) int {
	if v := strings.TrimSpace(query.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// RequestBodyParser handles different content types for request body
// parsing. It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent with a non-null value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		return ok && val != nil
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Number returns the coerced numeric value of key.
func (p *RequestBodyParser) Number(key string) float64 {
	return core.ParseNumber(p.Get(key))
}

func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// entryNumberFields maps wire names to the numeric fields of an input.
func entryNumberFields(in *core.EntryInput) map[string]*float64 {
	return map[string]*float64{
		"milk_liters":             &in.MilkLiters,
		"milk_price_per_liter":    &in.MilkPricePerLiter,
		"premix_packets":          &in.PremixPackets,
		"premix_price_per_packet": &in.PremixPricePerPacket,
		"coffee_liters":           &in.CoffeeLiters,
		"coffee_price_per_liter":  &in.CoffeePricePerLiter,
		"cups_used":               &in.CupsUsed,
		"cup_price":               &in.CupPrice,
		"spoons_used":             &in.SpoonsUsed,
		"spoon_price":             &in.SpoonPrice,
		"cups_sold":               &in.CupsSold,
		"price_per_cup_sold":      &in.PricePerCupSold,
	}
}

// parseEntryNumbers coerces every numeric field; missing ones are zero.
func parseEntryNumbers(p *RequestBodyParser) core.EntryInput {
	var in core.EntryInput
	for key, dst := range entryNumberFields(&in) {
		*dst = p.Number(key)
	}
	return in
}

// parseEntryInput reads a full entry. The date is the only field that can
// make it fail.
func parseEntryInput(p *RequestBodyParser) (core.EntryInput, error) {
	in := parseEntryNumbers(p)
	raw := p.Get("entry_date")
	if raw == "" {
		return core.EntryInput{}, core.ErrInvalidDate
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return core.EntryInput{}, err
	}
	in.EntryDate = date
	return in, nil
}

// parseEntryPatch reads only the fields that were sent.
func parseEntryPatch(p *RequestBodyParser) (core.EntryPatch, error) {
	var patch core.EntryPatch
	if p.Has("entry_date") {
		date, err := core.ParseDate(p.Get("entry_date"))
		if err != nil {
			return core.EntryPatch{}, err
		}
		patch.EntryDate = &date
	}

	fields := map[string]**float64{
		"milk_liters":             &patch.MilkLiters,
		"milk_price_per_liter":    &patch.MilkPricePerLiter,
		"premix_packets":          &patch.PremixPackets,
		"premix_price_per_packet": &patch.PremixPricePerPacket,
		"coffee_liters":           &patch.CoffeeLiters,
		"coffee_price_per_liter":  &patch.CoffeePricePerLiter,
		"cups_used":               &patch.CupsUsed,
		"cup_price":               &patch.CupPrice,
		"spoons_used":             &patch.SpoonsUsed,
		"spoon_price":             &patch.SpoonPrice,
		"cups_sold":               &patch.CupsSold,
		"price_per_cup_sold":      &patch.PricePerCupSold,
	}
	setPresent(p, fields)
	return patch, nil
}

func parseDefaultsPatch(p *RequestBodyParser) core.DefaultCostsPatch {
	var patch core.DefaultCostsPatch
	setPresent(p, map[string]**float64{
		"milk_price_per_liter":    &patch.MilkPricePerLiter,
		"premix_price_per_packet": &patch.PremixPricePerPacket,
		"coffee_price_per_liter":  &patch.CoffeePricePerLiter,
		"cup_price":               &patch.CupPrice,
		"spoon_price":             &patch.SpoonPrice,
		"price_per_cup_sold":      &patch.PricePerCupSold,
	})
	return patch
}

func setPresent(p *RequestBodyParser, fields map[string]**float64) {
	for key, dst := range fields {
		if p.Has(key) {
			v := p.Number(key)
			*dst = &v
		}
	}
}

// RequireMethod checks if the request method matches the expected
// method(s). Returns an error response builder if it doesn't.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET also accepts HEAD.
func RequireGET(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

func RequirePOST(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// parseBodyOrFail parses the request body and returns an error response on
// failure. Returns a nil builder on success.
func parseBodyOrFail(r *http.Request) (*RequestBodyParser, *ResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, BadRequestError("invalid request body")
	}
	return p, nil
}
