package memory

import (
	"context"
	"sync"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// SocialMetricsStore is an in-memory implementation of storage.SocialMetricsStore.
type SocialMetricsStore struct {
	mu     sync.RWMutex
	byMint map[string]*domain.SocialMetrics
}

// NewSocialMetricsStore creates a new in-memory social metrics store.
func NewSocialMetricsStore() *SocialMetricsStore {
	return &SocialMetricsStore{
		byMint: make(map[string]*domain.SocialMetrics),
	}
}

// Put stores the snapshot for m.Mint, replacing any previous one.
func (s *SocialMetricsStore) Put(_ context.Context, m *domain.SocialMetrics) error {
	if m == nil || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metricsCopy := *m
	s.byMint[m.Mint] = &metricsCopy
	return nil
}

// Get retrieves the latest snapshot for a coin. Returns ErrNotFound if absent.
func (s *SocialMetricsStore) Get(_ context.Context, mint string) (*domain.SocialMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metricsCopy := *m
	return &metricsCopy, nil
}

var _ storage.SocialMetricsStore = (*SocialMetricsStore)(nil)
