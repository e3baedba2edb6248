package memory

import (
	"context"
	"sort"
	"sync"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.Mint == "" || !t.Side.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	tradeCopy := *t
	s.data[t.ID] = &tradeCopy
	return nil
}

// GetByMint retrieves the latest trades of a coin, ordered by timestamp DESC.
func (s *TradeStore) GetByMint(_ context.Context, mint string, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Mint == mint {
			tradeCopy := *t
			result = append(result, &tradeCopy)
		}
	}

	sortNewestFirst(result)
	return truncate(result, limit), nil
}

// GetRecent retrieves the latest trades across all coins, ordered by timestamp DESC.
func (s *TradeStore) GetRecent(_ context.Context, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Trade, 0, len(s.data))
	for _, t := range s.data {
		tradeCopy := *t
		result = append(result, &tradeCopy)
	}

	sortNewestFirst(result)
	return truncate(result, limit), nil
}

// GetByTimeRange retrieves trades of a coin within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TradeStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Mint == mint && t.Timestamp >= start && t.Timestamp <= end {
			tradeCopy := *t
			result = append(result, &tradeCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Summary returns the count and realized PnL over all trades.
func (s *TradeStore) Summary(_ context.Context) (domain.TradeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum domain.TradeSummary
	for _, t := range s.data {
		sum.Count++
		sum.TotalProfitLoss += t.ProfitLoss
	}
	return sum, nil
}

// DeleteBefore removes trades with timestamp < cutoff.
func (s *TradeStore) DeleteBefore(_ context.Context, cutoff int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, t := range s.data {
		if t.Timestamp < cutoff {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

// sortNewestFirst orders by timestamp DESC with id as a stable tiebreaker.
func sortNewestFirst(trades []*domain.Trade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp > trades[j].Timestamp
		}
		return trades[i].ID < trades[j].ID
	})
}

func truncate(trades []*domain.Trade, limit int) []*domain.Trade {
	if limit > 0 && len(trades) > limit {
		return trades[:limit]
	}
	return trades
}

var _ storage.TradeStore = (*TradeStore)(nil)
