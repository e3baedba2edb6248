package memory

import (
	"context"
	"sort"
	"sync"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// CoinStore is an in-memory implementation of storage.CoinStore.
type CoinStore struct {
	mu     sync.RWMutex
	byMint map[string]*domain.Coin // keyed by mint (unique)
}

// NewCoinStore creates a new in-memory coin store.
func NewCoinStore() *CoinStore {
	return &CoinStore{
		byMint: make(map[string]*domain.Coin),
	}
}

// Insert adds a new coin. Returns ErrDuplicateKey if mint already exists.
func (s *CoinStore) Insert(_ context.Context, c *domain.Coin) error {
	if c == nil || c.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMint[c.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	coinCopy := copyCoin(c)
	if coinCopy.Status == "" {
		coinCopy.Status = domain.CoinStatusActive
	}
	s.byMint[c.Mint] = coinCopy
	return nil
}

// UpdateMarket applies market field changes. Returns ErrNotFound if not exists.
func (s *CoinStore) UpdateMarket(_ context.Context, mint string, u domain.MarketUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.byMint[mint]
	if !exists {
		return storage.ErrNotFound
	}

	u.Apply(c)
	return nil
}

// SetStatus changes the lifecycle status of a coin. Returns ErrNotFound if not exists.
func (s *CoinStore) SetStatus(_ context.Context, mint string, status domain.CoinStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.byMint[mint]
	if !exists {
		return storage.ErrNotFound
	}

	c.Status = status
	return nil
}

// GetByMint retrieves a coin by mint address. Returns ErrNotFound if not exists.
func (s *CoinStore) GetByMint(_ context.Context, mint string) (*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyCoin(c), nil
}

// GetActive retrieves all active coins, ordered by market cap DESC, then mint ASC.
func (s *CoinStore) GetActive(_ context.Context) ([]*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Coin
	for _, c := range s.byMint {
		if c.IsActive() {
			result = append(result, copyCoin(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].MarketCap != result[j].MarketCap {
			return result[i].MarketCap > result[j].MarketCap
		}
		return result[i].Mint < result[j].Mint
	})

	return result, nil
}

// Count returns the total number of coins.
func (s *CoinStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byMint), nil
}

// copyCoin returns a deep copy so callers cannot alias stored nullable fields.
func copyCoin(c *domain.Coin) *domain.Coin {
	out := *c
	out.Description = copyString(c.Description)
	out.ImageURL = copyString(c.ImageURL)
	out.Website = copyString(c.Website)
	out.Twitter = copyString(c.Twitter)
	out.Telegram = copyString(c.Telegram)
	return &out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ storage.CoinStore = (*CoinStore)(nil)
