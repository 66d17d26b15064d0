package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "softy.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sample(y, m, d int) core.EntryInput {
	return core.EntryInput{
		EntryDate:            core.NewDate(y, m, d),
		MilkLiters:           10,
		MilkPricePerLiter:    50,
		PremixPackets:        2,
		PremixPricePerPacket: 100,
		CupsUsed:             100,
		CupPrice:             1,
		CupsSold:             95,
		PricePerCupSold:      10,
	}
}

func TestRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	e, err := repo.CreateEntry(ctx, sample(2024, 5, 10))
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected an id")
	}
	if *e.TotalCost != 800 || *e.TotalRevenue != 950 || *e.ProfitLoss != 150 {
		t.Fatalf("totals cost=%v revenue=%v pl=%v", *e.TotalCost, *e.TotalRevenue, *e.ProfitLoss)
	}
	if *e.MilkTotalCost != 500 || *e.CupsTotalCost != 100 {
		t.Fatalf("line totals milk=%v cups=%v", *e.MilkTotalCost, *e.CupsTotalCost)
	}

	got, ok, err := repo.GetEntry(ctx, e.ID)
	if err != nil || !ok {
		t.Fatalf("GetEntry: ok=%v err=%v", ok, err)
	}
	if got.EntryDate.String() != "2024-05-10" || got.CreatedAt.IsZero() {
		t.Fatalf("got %+v", got)
	}

	byDate, ok, err := repo.GetEntryByDate(ctx, core.NewDate(2024, 5, 10))
	if err != nil || !ok || byDate.ID != e.ID {
		t.Fatalf("GetEntryByDate: %v %v", ok, err)
	}

	_, ok, err = repo.GetEntryByDate(ctx, core.NewDate(2024, 5, 11))
	if err != nil || ok {
		t.Fatalf("absent date should not error: ok=%v err=%v", ok, err)
	}
	_, ok, err = repo.GetEntry(ctx, "nope")
	if err != nil || ok {
		t.Fatalf("absent id should not error: ok=%v err=%v", ok, err)
	}
}

func TestRepository_DuplicateDate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.CreateEntry(ctx, sample(2024, 5, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateEntry(ctx, sample(2024, 5, 10)); !errors.Is(err, core.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
}

func TestRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	e, _ := repo.CreateEntry(ctx, sample(2024, 5, 10))
	other, _ := repo.CreateEntry(ctx, sample(2024, 5, 11))

	sold := 50.0
	upd, err := repo.UpdateEntry(ctx, e.ID, core.EntryPatch{CupsSold: &sold})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if *upd.TotalRevenue != 500 || *upd.ProfitLoss != -300 {
		t.Fatalf("updated totals revenue=%v pl=%v", *upd.TotalRevenue, *upd.ProfitLoss)
	}
	if upd.MilkLiters != 10 {
		t.Fatal("untouched fields must survive a partial update")
	}
	_, version, err := repo.GetEntryVersion(ctx, e.ID)
	if err != nil || version != 2 {
		t.Fatalf("version=%d err=%v", version, err)
	}

	taken := other.EntryDate
	if _, err := repo.UpdateEntry(ctx, e.ID, core.EntryPatch{EntryDate: &taken}); !errors.Is(err, core.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
	if _, err := repo.UpdateEntry(ctx, "missing", core.EntryPatch{CupsSold: &sold}); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	if err := repo.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := repo.DeleteEntry(ctx, e.ID); !errors.Is(err, core.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestRepository_ListEntries(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, d := range []core.Date{
		core.NewDate(2024, 2, 29),
		core.NewDate(2024, 2, 1),
		core.NewDate(2024, 3, 1),
		core.NewDate(2023, 12, 31),
		core.NewDate(2024, 2, 15),
	} {
		in := sample(d.Year(), d.Month(), d.Day())
		if _, err := repo.CreateEntry(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	feb, _ := core.MonthRange(2024, 2)
	list, err := repo.ListEntries(ctx, ports.ListFilter{Range: feb})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-02-29", "2024-02-15", "2024-02-01"}
	if len(list) != len(want) {
		t.Fatalf("got %d entries", len(list))
	}
	for i, e := range list {
		if e.EntryDate.String() != want[i] {
			t.Fatalf("position %d: %s, want %s", i, e.EntryDate, want[i])
		}
	}

	all, _ := repo.ListEntries(ctx, ports.ListFilter{})
	if len(all) != 5 || all[0].EntryDate.String() != "2024-03-01" {
		t.Fatalf("all entries newest first, got %d starting %s", len(all), all[0].EntryDate)
	}

	page, _ := repo.ListEntries(ctx, ports.ListFilter{Limit: 2, Offset: 2})
	if len(page) != 2 || page[0].EntryDate.String() != "2024-02-15" {
		t.Fatalf("page: %d %v", len(page), page)
	}
}

func TestRepository_ListYears(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	repo.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	years, err := repo.ListYears(ctx)
	if err != nil || len(years) != 1 || years[0] != 2030 {
		t.Fatalf("empty store years=%v err=%v", years, err)
	}

	for _, in := range []core.EntryInput{sample(2022, 1, 1), sample(2024, 6, 1), sample(2024, 7, 1)} {
		if _, err := repo.CreateEntry(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	years, _ = repo.ListYears(ctx)
	if len(years) != 2 || years[0] != 2024 || years[1] != 2022 {
		t.Fatalf("years %v", years)
	}
}

func TestRepository_DefaultCostsSingleton(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, ok, err := repo.GetDefaultCosts(ctx); ok || err != nil {
		t.Fatalf("expected no defaults: ok=%v err=%v", ok, err)
	}

	milk, cup := 52.0, 0.75
	if _, err := repo.UpsertDefaultCosts(ctx, core.DefaultCostsPatch{MilkPricePerLiter: &milk}); err != nil {
		t.Fatal(err)
	}
	d, err := repo.UpsertDefaultCosts(ctx, core.DefaultCostsPatch{CupPrice: &cup})
	if err != nil {
		t.Fatal(err)
	}
	if d.MilkPricePerLiter != 52 || d.CupPrice != 0.75 {
		t.Fatalf("merged defaults %+v", d)
	}

	var rows int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM default_costs`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Fatalf("expected exactly one defaults row, got %d", rows)
	}
}

func TestRepository_DefaultCostsConcurrentUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			_, _ = repo.UpsertDefaultCosts(ctx, core.DefaultCostsPatch{SpoonPrice: &v})
		}(float64(i))
	}
	wg.Wait()

	var rows int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM default_costs`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Fatalf("concurrent upserts created %d rows", rows)
	}
}

func TestRepository_SyncStatus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	a, _ := repo.CreateEntry(ctx, sample(2024, 1, 1))
	b, _ := repo.CreateEntry(ctx, sample(2024, 1, 2))

	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending=%v err=%v", pending, err)
	}

	if err := repo.MarkSynced(ctx, a.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkSyncError(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	stats, _ := repo.SyncStats(ctx)
	if stats["synced"] != 1 || stats["error"] != 1 {
		t.Fatalf("stats %v", stats)
	}

	// An edit after the sync puts the entry back in the queue.
	sold := 1.0
	if _, err := repo.UpdateEntry(ctx, a.ID, core.EntryPatch{CupsSold: &sold}); err != nil {
		t.Fatal(err)
	}
	// Marking the stale version does not hide the newer one.
	if err := repo.MarkSynced(ctx, a.ID, 1); err != nil {
		t.Fatal(err)
	}
	pending, _ = repo.GetPendingSyncEntries(ctx, 10)
	if len(pending) != 1 || pending[0].ID != a.ID || pending[0].Version != 2 {
		t.Fatalf("pending after edit %+v", pending)
	}
}
