package poller

import (
	"sync"
	"time"

	"coin-dashboard/internal/view"
)

// CoinBoard is the state of a dashboard page. Coin list refreshes and full
// reloads are numbered independently; each stream drops results older than
// the last one it applied. The server timestamp decides which coin list wins
// when a reload and a refresh finish out of order, while a reload's stats and
// recent trades always apply.
type CoinBoard struct {
	mu         sync.Mutex
	coins      []view.CoinView
	dashboard  *view.Dashboard
	coinsAsOf  time.Time
	reloadAsOf time.Time
	coinsSeq   uint64
	reloadSeq  uint64
	reloads    int
}

// NewCoinBoard creates an empty board.
func NewCoinBoard() *CoinBoard {
	return &CoinBoard{}
}

// ReplaceCoins swaps in a fresh coin list.
func (b *CoinBoard) ReplaceCoins(seq uint64, asOf time.Time, coins []view.CoinView) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if seq <= b.coinsSeq || asOf.Before(b.coinsAsOf) {
		return false
	}
	b.coinsSeq = seq
	b.coinsAsOf = asOf
	b.coins = append([]view.CoinView(nil), coins...)
	if b.dashboard != nil {
		b.dashboard.Coins = b.coins
		b.dashboard.EmptyCoins = emptyCoins(b.coins)
	}
	return true
}

// Reload replaces the page state with d. The coin list in d is kept only if
// it is not older than the current one.
func (b *CoinBoard) Reload(seq uint64, asOf time.Time, d *view.Dashboard) bool {
	if d == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq <= b.reloadSeq {
		return false
	}
	b.reloadSeq = seq
	b.reloadAsOf = asOf

	cp := *d
	cp.RecentTrades = append([]view.TradeView(nil), d.RecentTrades...)
	if asOf.Before(b.coinsAsOf) {
		cp.Coins = b.coins
		cp.EmptyCoins = emptyCoins(b.coins)
	} else {
		cp.Coins = append([]view.CoinView(nil), d.Coins...)
		b.coins = cp.Coins
		b.coinsAsOf = asOf
	}
	b.dashboard = &cp
	b.reloads++
	return true
}

func emptyCoins(coins []view.CoinView) *view.EmptyState {
	if len(coins) > 0 {
		return nil
	}
	empty := view.EmptyCoins
	return &empty
}

// Coins returns a copy of the current coin list.
func (b *CoinBoard) Coins() []view.CoinView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]view.CoinView(nil), b.coins...)
}

// Dashboard returns a copy of the last full page state, or nil before the first reload.
func (b *CoinBoard) Dashboard() *view.Dashboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dashboard == nil {
		return nil
	}
	cp := *b.dashboard
	cp.Coins = append([]view.CoinView(nil), b.dashboard.Coins...)
	cp.RecentTrades = append([]view.TradeView(nil), b.dashboard.RecentTrades...)
	return &cp
}

// AsOf returns the newest server timestamp applied to the board.
func (b *CoinBoard) AsOf() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reloadAsOf.After(b.coinsAsOf) {
		return b.reloadAsOf
	}
	return b.coinsAsOf
}

// Reloads returns the number of applied full reloads.
func (b *CoinBoard) Reloads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloads
}
