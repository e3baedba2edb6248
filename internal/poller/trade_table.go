package poller

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"coin-dashboard/internal/view"
)

// TradeTable is the visible trade list of a coin page. Rows are unique by
// trade ID, sorted newest first and capped. Results carry a sequence number
// and a result older than the last applied one is discarded.
type TradeTable struct {
	mu       sync.Mutex
	capacity int
	rows     []view.TradeView
	index    map[string]struct{}
	evicted  *lru.Cache // IDs dropped by the cap; kept out on later merges
	lastSeq  uint64
}

// NewTradeTable creates a table holding at most capacity rows.
func NewTradeTable(capacity int) *TradeTable {
	if capacity <= 0 {
		capacity = 50
	}
	evicted, _ := lru.New(capacity * 4)
	return &TradeTable{
		capacity: capacity,
		index:    make(map[string]struct{}, capacity),
		evicted:  evicted,
	}
}

// Merge integrates a fetch result. It returns the number of new rows and
// whether the result was applied at all.
func (t *TradeTable) Merge(seq uint64, trades []view.TradeView) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq <= t.lastSeq {
		return 0, false
	}
	t.lastSeq = seq

	var fresh []string
	for _, tr := range trades {
		if tr.ID == "" {
			continue
		}
		if _, ok := t.index[tr.ID]; ok {
			continue
		}
		if t.evicted.Contains(tr.ID) {
			continue
		}
		t.rows = append(t.rows, tr)
		t.index[tr.ID] = struct{}{}
		fresh = append(fresh, tr.ID)
	}
	if len(fresh) == 0 {
		return 0, true
	}

	sort.SliceStable(t.rows, func(i, j int) bool {
		if t.rows[i].TimestampMs != t.rows[j].TimestampMs {
			return t.rows[i].TimestampMs > t.rows[j].TimestampMs
		}
		return t.rows[i].ID < t.rows[j].ID
	})

	if len(t.rows) > t.capacity {
		for _, tr := range t.rows[t.capacity:] {
			delete(t.index, tr.ID)
			t.evicted.Add(tr.ID, struct{}{})
		}
		t.rows = t.rows[:t.capacity:t.capacity]
	}

	added := 0
	for _, id := range fresh {
		if _, ok := t.index[id]; ok {
			added++
		}
	}
	return added, true
}

// Rows returns a copy of the visible rows.
func (t *TradeTable) Rows() []view.TradeView {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]view.TradeView, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of visible rows.
func (t *TradeTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}
