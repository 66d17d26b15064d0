package core

import "testing"

func TestCalculate(t *testing.T) {
	in := EntryInput{
		MilkLiters:           10,
		MilkPricePerLiter:    52,
		PremixPackets:        3,
		PremixPricePerPacket: 120,
		CoffeeLiters:         1.5,
		CoffeePricePerLiter:  200,
		CupsUsed:             150,
		CupPrice:             0.5,
		SpoonsUsed:           150,
		SpoonPrice:           0.25,
		CupsSold:             148,
		PricePerCupSold:      10,
	}
	got := Calculate(in)

	wantLines := map[Line]float64{
		LineMilk:   520,
		LinePremix: 360,
		LineCoffee: 300,
		LineCups:   75,
		LineSpoons: 37.5,
	}
	var sum float64
	for l, want := range wantLines {
		if got.Subtotal(l) != want {
			t.Errorf("%s subtotal = %v, want %v", l, got.Subtotal(l), want)
		}
		sum += got.Subtotal(l)
	}
	if got.TotalCost != sum {
		t.Errorf("total cost %v != sum of lines %v", got.TotalCost, sum)
	}
	if got.TotalRevenue != 1480 {
		t.Errorf("revenue = %v", got.TotalRevenue)
	}
	if got.ProfitLoss != got.TotalRevenue-got.TotalCost {
		t.Errorf("profit/loss = %v", got.ProfitLoss)
	}
}

func TestCalculateLoss(t *testing.T) {
	got := Calculate(EntryInput{MilkLiters: 4, MilkPricePerLiter: 50, CupsSold: 10, PricePerCupSold: 10})
	if got.ProfitLoss != -100 {
		t.Fatalf("expected loss of 100, got %v", got.ProfitLoss)
	}
}

func TestCalculateZero(t *testing.T) {
	got := Calculate(EntryInput{})
	if got.TotalCost != 0 || got.TotalRevenue != 0 || got.ProfitLoss != 0 {
		t.Fatalf("zero input should yield zero totals: %+v", got)
	}
}

func TestLines(t *testing.T) {
	lines := Lines()
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if lines[0].Key != "milk" || lines[4].Key != "spoons" {
		t.Fatalf("unexpected order: %v", lines)
	}
	if Line(9).String() != "unknown" {
		t.Fatal("out of range line should be unknown")
	}
}
