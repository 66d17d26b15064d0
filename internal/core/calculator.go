package core

// Line identifies one of the five consumable lines of a daily entry.
type Line int

const (
	LineMilk Line = iota
	LinePremix
	LineCoffee
	LineCups
	LineSpoons

	lineCount
)

// LineInfo describes a consumable line for listings and sheet headers.
type LineInfo struct {
	Line  Line
	Key   string
	Label string
	Unit  string
}

var lineInfo = [lineCount]LineInfo{
	{LineMilk, "milk", "Milk", "liters"},
	{LinePremix, "premix", "Premix", "packets"},
	{LineCoffee, "coffee", "Coffee decoction", "liters"},
	{LineCups, "cups", "Cups", "pcs"},
	{LineSpoons, "spoons", "Spoons", "pcs"},
}

// Lines returns the consumable lines in form order.
func Lines() []LineInfo {
	out := make([]LineInfo, len(lineInfo))
	copy(out, lineInfo[:])
	return out
}

func (l Line) String() string {
	if l < 0 || l >= lineCount {
		return "unknown"
	}
	return lineInfo[l].Key
}

// Totals is the result of running the calculator over one entry.
type Totals struct {
	Lines        [lineCount]float64 `json:"-"`
	TotalCost    float64            `json:"total_cost"`
	TotalRevenue float64            `json:"total_revenue"`
	ProfitLoss   float64            `json:"profit_loss"`
}

// Quantities returns (quantity, unit price) for every line in form order.
func (in EntryInput) Quantities() [lineCount][2]float64 {
	return [lineCount][2]float64{
		LineMilk:   {in.MilkLiters, in.MilkPricePerLiter},
		LinePremix: {in.PremixPackets, in.PremixPricePerPacket},
		LineCoffee: {in.CoffeeLiters, in.CoffeePricePerLiter},
		LineCups:   {in.CupsUsed, in.CupPrice},
		LineSpoons: {in.SpoonsUsed, in.SpoonPrice},
	}
}

// Calculate derives line subtotals, total cost, revenue and profit/loss.
// Arithmetic stays in float64 in the input's own unit; nothing is rounded.
func Calculate(in EntryInput) Totals {
	var t Totals
	for i, q := range in.Quantities() {
		t.Lines[i] = q[0] * q[1]
		t.TotalCost += t.Lines[i]
	}
	t.TotalRevenue = in.CupsSold * in.PricePerCupSold
	t.ProfitLoss = t.TotalRevenue - t.TotalCost
	return t
}

// Subtotal returns the subtotal of one line.
func (t Totals) Subtotal(l Line) float64 {
	if l < 0 || l >= lineCount {
		return 0
	}
	return t.Lines[l]
}
