package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"softy/internal/core"
	ports "softy/internal/sheets"
)

// Store keeps entries and the defaults record in memory.
type Store struct {
	mu       sync.Mutex
	items    map[string]core.DailyEntry
	byDate   map[string]string
	defaults *core.DefaultCosts
	now      func() time.Time
}

var (
	_ ports.EntryRepository   = (*Store)(nil)
	_ ports.DefaultCostsStore = (*Store)(nil)
	_ ports.EntryMirror       = (*Mirror)(nil)
)

func New() *Store {
	return &Store{
		items:  make(map[string]core.DailyEntry),
		byDate: make(map[string]string),
		now:    time.Now,
	}
}

// NewWithDefaults returns a store seeded with a defaults record.
func NewWithDefaults(d core.DefaultCosts) *Store {
	s := New()
	s.defaults = &d
	return s
}

func (s *Store) CreateEntry(_ context.Context, in core.EntryInput) (core.DailyEntry, error) {
	if err := in.Validate(); err != nil {
		return core.DailyEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := in.EntryDate.String()
	if _, exists := s.byDate[key]; exists {
		return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrDuplicateDate, key)
	}
	now := s.now().UTC()
	e := core.DailyEntry{ID: uuid.NewString(), EntryInput: in, CreatedAt: now, UpdatedAt: now}
	e.Derive()
	s.items[e.ID] = e
	s.byDate[key] = e.ID
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, patch core.EntryPatch) (core.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	in := patch.Apply(e.EntryInput)
	if err := in.Validate(); err != nil {
		return core.DailyEntry{}, err
	}
	oldKey, newKey := e.EntryDate.String(), in.EntryDate.String()
	if oldKey != newKey {
		if _, taken := s.byDate[newKey]; taken {
			return core.DailyEntry{}, fmt.Errorf("%w: %s", core.ErrDuplicateDate, newKey)
		}
		delete(s.byDate, oldKey)
		s.byDate[newKey] = id
	}
	e.EntryInput = in
	e.UpdatedAt = s.now().UTC()
	e.Derive()
	s.items[id] = e
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	delete(s.items, id)
	delete(s.byDate, e.EntryDate.String())
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (core.DailyEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	return e, ok, nil
}

func (s *Store) GetEntryByDate(_ context.Context, date core.Date) (core.DailyEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDate[date.String()]
	if !ok {
		return core.DailyEntry{}, false, nil
	}
	return s.items[id], true, nil
}

func (s *Store) ListEntries(_ context.Context, f ports.ListFilter) ([]core.DailyEntry, error) {
	f = f.Normalize()
	s.mu.Lock()
	out := make([]core.DailyEntry, 0, len(s.items))
	for _, e := range s.items {
		if f.Range.Contains(e.EntryDate) {
			out = append(out, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EntryDate.After(out[j].EntryDate.Time)
	})
	if f.Offset >= len(out) {
		return []core.DailyEntry{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) ListYears(_ context.Context) ([]int, error) {
	s.mu.Lock()
	seen := map[int]struct{}{}
	for _, e := range s.items {
		seen[e.EntryDate.Year()] = struct{}{}
	}
	s.mu.Unlock()

	if len(seen) == 0 {
		return []int{s.now().Year()}, nil
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (s *Store) GetDefaultCosts(_ context.Context) (core.DefaultCosts, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defaults == nil {
		return core.DefaultCosts{}, false, nil
	}
	return *s.defaults, true, nil
}

func (s *Store) UpsertDefaultCosts(_ context.Context, patch core.DefaultCostsPatch) (core.DefaultCosts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if s.defaults == nil {
		d := patch.Apply(core.DefaultCosts{})
		d.CreatedAt, d.UpdatedAt = now, now
		s.defaults = &d
		return d, nil
	}
	d := patch.Apply(*s.defaults)
	d.UpdatedAt = now
	s.defaults = &d
	return d, nil
}

// Mirror is an in-memory EntryMirror keyed by entry date.
type Mirror struct {
	mu   sync.Mutex
	rows map[string]core.DailyEntry
}

func NewMirror() *Mirror {
	return &Mirror{rows: make(map[string]core.DailyEntry)}
}

func (m *Mirror) UpsertEntry(_ context.Context, e core.DailyEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := e.EntryDate.String()
	m.rows[key] = e
	return "mem:" + key, nil
}

func (m *Mirror) RemoveEntry(_ context.Context, date core.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, date.String())
	return nil
}

// Rows returns the mirrored dates in ascending order.
func (m *Mirror) Rows() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.rows))
	for k := range m.rows {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Row returns the mirrored entry for a date.
func (m *Mirror) Row(date string) (core.DailyEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[strings.TrimSpace(date)]
	return e, ok
}
