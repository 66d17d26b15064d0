package fx

import "strings"

type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Currencies offered by the converter, in display order.
var Currencies = []Currency{
	{"CNY", "Chinese Yuan"},
	{"USD", "US Dollar"},
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"HKD", "Hong Kong Dollar"},
	{"AUD", "Australian Dollar"},
	{"CAD", "Canadian Dollar"},
	{"CHF", "Swiss Franc"},
	{"SGD", "Singapore Dollar"},
	{"KRW", "South Korean Won"},
	{"TWD", "New Taiwan Dollar"},
	{"MYR", "Malaysian Ringgit"},
	{"THB", "Thai Baht"},
	{"VND", "Vietnamese Dong"},
}

// QuickAmounts are the preset amounts the widget offers.
var QuickAmounts = []float64{100, 1000, 5000, 10000, 50000, 100000}

// Default pair when none is given.
const (
	DefaultFrom = "CNY"
	DefaultTo   = "USD"
)

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func Supported(code string) bool {
	code = NormalizeCode(code)
	for _, c := range Currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Swap exchanges the two sides of a pair.
func Swap(from, to string) (string, string) {
	return to, from
}
