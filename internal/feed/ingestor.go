package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/idhash"
	"coin-dashboard/internal/observability"
	"coin-dashboard/internal/storage"
)

// ErrUnknownCoin is returned for trades of a coin that was never created.
var ErrUnknownCoin = errors.New("unknown coin")

// pointTimesSize bounds the per-coin memory of the last price point time.
const pointTimesSize = 10000

// TradeSubscriber subscribes to trades of newly created coins.
type TradeSubscriber interface {
	SubscribeTrades(mints ...string) error
}

// Ingestor writes feed events into the stores.
type Ingestor struct {
	coins      storage.CoinStore
	trades     storage.TradeStore
	prices     storage.PriceHistoryStore
	subscriber TradeSubscriber
	metadata   MetadataFetcher
	logger     *log.Logger
	now        func() time.Time

	// last price point time per mint, so points of one coin never share a millisecond
	pointMu    sync.Mutex
	pointTimes *lru.Cache
}

// NewIngestor creates an ingestor. subscriber may be nil.
func NewIngestor(
	coins storage.CoinStore,
	trades storage.TradeStore,
	prices storage.PriceHistoryStore,
	subscriber TradeSubscriber,
	logger *log.Logger,
) *Ingestor {
	if logger == nil {
		logger = log.Default()
	}
	pointTimes, _ := lru.New(pointTimesSize)
	return &Ingestor{
		coins:      coins,
		trades:     trades,
		prices:     prices,
		subscriber: subscriber,
		logger:     logger,
		now:        time.Now,
		pointTimes: pointTimes,
	}
}

// SetClock overrides the time source used to stamp events.
func (i *Ingestor) SetClock(now func() time.Time) {
	i.now = now
}

// SetMetadataFetcher enables resolving the metadata URI of created coins.
func (i *Ingestor) SetMetadataFetcher(f MetadataFetcher) {
	i.metadata = f
}

// Run applies events until ctx is cancelled or the channel is closed.
// Failed events are logged and skipped.
func (i *Ingestor) Run(ctx context.Context, events <-chan *Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := i.Apply(ctx, ev); err != nil {
				i.logger.Printf("skip %s event for %s: %v", ev.TxType, ev.Mint, err)
			}
		}
	}
}

// Apply writes one event. Re-delivered events are ignored.
func (i *Ingestor) Apply(ctx context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	now := i.now()
	observability.RecordFeedEvent(ev.TxType, float64(now.Unix()))

	var err error
	switch {
	case ev.TxType == TxCreate:
		err = i.applyCreate(ctx, ev, now)
	case ev.IsTrade():
		err = i.applyTrade(ctx, ev, now)
	default:
		observability.RecordFeedError(ev.TxType, "unsupported")
		return fmt.Errorf("unsupported txType %q", ev.TxType)
	}

	if err != nil {
		observability.RecordFeedError(ev.TxType, errorType(err))
	}
	return err
}

func (i *Ingestor) applyCreate(ctx context.Context, ev *Event, now time.Time) error {
	if !idhash.ValidMint(ev.Mint) {
		return fmt.Errorf("mint %q: %w", ev.Mint, storage.ErrInvalidInput)
	}

	switch _, err := i.coins.GetByMint(ctx, ev.Mint); {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("get coin: %w", err)
	}

	coin := &domain.Coin{
		Mint:      ev.Mint,
		Symbol:    strings.TrimSpace(ev.Symbol),
		Name:      strings.TrimSpace(ev.Name),
		Price:     ev.Price(),
		MarketCap: nonNegative(ev.MarketCapSol),
		Status:    domain.CoinStatusActive,
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	i.applyMetadata(ctx, coin, ev.URI)

	switch err := i.coins.Insert(ctx, coin); {
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil
	case err != nil:
		return fmt.Errorf("insert coin: %w", err)
	}
	observability.RecordCoinCreated()

	if i.subscriber != nil {
		if err := i.subscriber.SubscribeTrades(ev.Mint); err != nil {
			i.logger.Printf("subscribe trades for %s: %v", ev.Mint, err)
		}
	}

	// The creator's buy ships inside the create event.
	if ev.InitialBuy > 0 {
		price := coin.Price
		if ev.SolAmount > 0 {
			price = ev.SolAmount / ev.InitialBuy
		}
		trade := &domain.Trade{
			ID:        idhash.ComputeTradeID(ev.Mint, ev.Signature, string(domain.TradeSideBuy)),
			Mint:      ev.Mint,
			Signature: ev.Signature,
			Side:      domain.TradeSideBuy,
			Amount:    ev.InitialBuy,
			Price:     price,
			Trader:    ev.TraderPublicKey,
			Timestamp: now.UnixMilli(),
		}
		if _, err := i.storeTrade(ctx, trade); err != nil {
			return err
		}
	}

	if coin.Price > 0 {
		if err := i.recordPrice(ctx, ev.Mint, now, coin.Price); err != nil {
			return err
		}
	}
	return nil
}

// applyMetadata fills the optional coin fields from uri. Failures leave them empty.
func (i *Ingestor) applyMetadata(ctx context.Context, coin *domain.Coin, uri string) {
	if i.metadata == nil || strings.TrimSpace(uri) == "" {
		return
	}
	md, err := i.metadata.Fetch(ctx, uri)
	if err != nil {
		observability.RecordFeedError(TxCreate, "metadata")
		i.logger.Printf("metadata for %s: %v", coin.Mint, err)
		return
	}
	coin.Description = optional(md.Description)
	coin.ImageURL = optional(md.Image)
	coin.Website = optional(md.Website)
	coin.Twitter = optional(md.Twitter)
	coin.Telegram = optional(md.Telegram)
}

func (i *Ingestor) applyTrade(ctx context.Context, ev *Event, now time.Time) error {
	if ev.Signature == "" || ev.TokenAmount <= 0 {
		return fmt.Errorf("trade %s: %w", ev.Signature, storage.ErrInvalidInput)
	}

	if _, err := i.coins.GetByMint(ctx, ev.Mint); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownCoin
		}
		return fmt.Errorf("get coin: %w", err)
	}

	side := domain.TradeSideBuy
	if ev.TxType == TxSell {
		side = domain.TradeSideSell
	}

	price := ev.Price()
	if price == 0 {
		price = ev.SolAmount / ev.TokenAmount
	}

	trade := &domain.Trade{
		ID:        idhash.ComputeTradeID(ev.Mint, ev.Signature, string(side)),
		Mint:      ev.Mint,
		Signature: ev.Signature,
		Side:      side,
		Amount:    ev.TokenAmount,
		Price:     price,
		Trader:    ev.TraderPublicKey,
		Timestamp: now.UnixMilli(),
	}
	stored, err := i.storeTrade(ctx, trade)
	if err != nil || !stored {
		return err
	}

	update := domain.MarketUpdate{
		Price:     &price,
		UpdatedAt: now.UnixMilli(),
	}
	if ev.MarketCapSol > 0 {
		mc := ev.MarketCapSol
		update.MarketCap = &mc
	}
	if err := i.coins.UpdateMarket(ctx, ev.Mint, update); err != nil {
		return fmt.Errorf("update market: %w", err)
	}

	return i.recordPrice(ctx, ev.Mint, now, price)
}

// storeTrade inserts t. It reports false for a re-delivered trade.
func (i *Ingestor) storeTrade(ctx context.Context, t *domain.Trade) (bool, error) {
	switch err := i.trades.Insert(ctx, t); {
	case errors.Is(err, storage.ErrDuplicateKey):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("insert trade: %w", err)
	}
	observability.RecordTradeStored()
	return true, nil
}

// recordPrice appends a chart point. Points of one coin in the same
// millisecond are shifted forward so each is kept in order and the chart
// ends on the latest price.
func (i *Ingestor) recordPrice(ctx context.Context, mint string, now time.Time, price float64) error {
	i.pointMu.Lock()
	defer i.pointMu.Unlock()

	ts := now.UnixMilli()
	if last, ok := i.pointTimes.Get(mint); ok && last.(int64) >= ts {
		ts = last.(int64) + 1
	}

	// A point from before a restart may still hold the slot.
	for attempt := 0; attempt < 3; attempt++ {
		point := &domain.HistoricalPricePoint{Mint: mint, TimestampMs: ts, Price: price}
		err := i.prices.InsertBulk(ctx, []*domain.HistoricalPricePoint{point})
		switch {
		case err == nil:
			i.pointTimes.Add(mint, ts)
			return nil
		case errors.Is(err, storage.ErrDuplicateKey):
			ts++
		default:
			return fmt.Errorf("insert price point: %w", err)
		}
	}
	i.logger.Printf("price point for %s dropped: slot %d taken", mint, ts)
	return nil
}

// errorType maps an apply error to a metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCoin):
		return "unknown_coin"
	case errors.Is(err, storage.ErrInvalidInput):
		return "invalid"
	default:
		return "storage"
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
