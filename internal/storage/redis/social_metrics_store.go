package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

const socialKeyPrefix = "social:"

// SocialMetricsStore implements storage.SocialMetricsStore as one hash per coin.
type SocialMetricsStore struct {
	client *Client
}

// NewSocialMetricsStore creates a new SocialMetricsStore.
func NewSocialMetricsStore(client *Client) *SocialMetricsStore {
	return &SocialMetricsStore{client: client}
}

// Compile-time interface check.
var _ storage.SocialMetricsStore = (*SocialMetricsStore)(nil)

func socialKey(mint string) string {
	return socialKeyPrefix + mint
}

// Put replaces the snapshot for m.Mint.
func (s *SocialMetricsStore) Put(ctx context.Context, m *domain.SocialMetrics) error {
	if m == nil || m.Mint == "" {
		return storage.ErrInvalidInput
	}

	key := socialKey(m.Mint)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"holder_count", m.HolderCount,
			"social_score", m.SocialScore,
			"mention_count", m.MentionCount,
			"sentiment", m.Sentiment,
			"updated_at", m.UpdatedAt,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put social metrics: %w", err)
	}
	return nil
}

// Get returns the snapshot for mint. Returns ErrNotFound if absent.
func (s *SocialMetricsStore) Get(ctx context.Context, mint string) (*domain.SocialMetrics, error) {
	fields, err := s.client.HGetAll(ctx, socialKey(mint)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get social metrics: %w", err)
	}
	if len(fields) == 0 {
		return nil, storage.ErrNotFound
	}

	m := &domain.SocialMetrics{Mint: mint}
	if m.HolderCount, err = parseInt(fields, "holder_count"); err != nil {
		return nil, err
	}
	if m.SocialScore, err = parseFloat(fields, "social_score"); err != nil {
		return nil, err
	}
	if m.MentionCount, err = parseInt(fields, "mention_count"); err != nil {
		return nil, err
	}
	if m.Sentiment, err = parseFloat(fields, "sentiment"); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseInt(fields, "updated_at"); err != nil {
		return nil, err
	}
	return m, nil
}

// parseInt reads an integer field; missing fields are zero.
func parseInt(fields map[string]string, name string) (int64, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return n, nil
}

// parseFloat reads a float field; missing fields are zero.
func parseFloat(fields map[string]string, name string) (float64, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return f, nil
}
