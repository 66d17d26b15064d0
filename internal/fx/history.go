package fx

import "sync"

// HistorySize is how many conversions History keeps.
const HistorySize = 10

// History holds the most recent conversions, newest first.
type History struct {
	mu    sync.Mutex
	items []Conversion
}

func (h *History) Add(c Conversion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append([]Conversion{c}, h.items...)
	if len(h.items) > HistorySize {
		h.items = h.items[:HistorySize]
	}
}

// Items returns a copy of the history.
func (h *History) Items() []Conversion {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Conversion, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
