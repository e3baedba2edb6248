package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.HistoricalPricePoint // keyed by (mint, timestamp_ms)
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string]*domain.HistoricalPricePoint),
	}
}

// priceKey generates a unique key for a price point.
func priceKey(mint string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", mint, timestampMs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, points []*domain.HistoricalPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.Mint, p.TimestampMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		pointCopy := *p
		s.data[priceKey(p.Mint, p.TimestampMs)] = &pointCopy
	}

	return nil
}

// GetByTimeRange retrieves points for a coin within [start, end] (inclusive).
func (s *PriceHistoryStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.HistoricalPricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HistoricalPricePoint
	for _, p := range s.data {
		if p.Mint == mint && p.TimestampMs >= start && p.TimestampMs <= end {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// DeleteBefore removes points with timestamp < cutoff.
func (s *PriceHistoryStore) DeleteBefore(_ context.Context, cutoff int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.data {
		if p.TimestampMs < cutoff {
			delete(s.data, key)
		}
	}
	return nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
