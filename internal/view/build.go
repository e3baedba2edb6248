package view

import (
	"time"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/format"
)

// Empty states rendered in place of empty dashboard lists.
var (
	EmptyCoins = EmptyState{
		Title:       "No active coins",
		Message:     "There are no active coins yet.",
		ActionLabel: "Create a coin",
		ActionURL:   "/create",
	}
	EmptyTrades = EmptyState{
		Title:   "No recent trades",
		Message: "Trades will appear here as they happen.",
	}
)

func newCoinView(c *domain.Coin) CoinView {
	changeText, tone := format.Change(c.Change24h)
	return CoinView{
		Mint:        c.Mint,
		Symbol:      c.Symbol,
		Name:        c.Name,
		Description: domain.StringOrEmpty(c.Description),
		ImageURL:    domain.StringOrEmpty(c.ImageURL),
		Website:     domain.StringOrEmpty(c.Website),
		Twitter:     domain.StringOrEmpty(c.Twitter),
		Telegram:    domain.StringOrEmpty(c.Telegram),
		Status:      string(c.Status),

		Price:         c.Price,
		Change24h:     c.Change24h,
		Volume24h:     c.Volume24h,
		MarketCap:     c.MarketCap,
		TotalSupply:   c.TotalSupply,
		PriceText:     format.Price(c.Price),
		ChangeText:    changeText,
		ChangeTone:    tone,
		VolumeText:    format.Volume(c.Volume24h),
		MarketCapText: format.MarketCap(c.MarketCap),
		SupplyText:    format.Supply(c.TotalSupply),

		CreatedAt: format.Timestamp(c.CreatedAt),
		UpdatedAt: format.Timestamp(c.UpdatedAt),
	}
}

func newTradeView(t *domain.Trade, symbol string, loc *time.Location) TradeView {
	return TradeView{
		ID:          t.ID,
		Mint:        t.Mint,
		Symbol:      symbol,
		Signature:   t.Signature,
		Side:        string(t.Side),
		Amount:      t.Amount,
		Price:       t.Price,
		PriceText:   format.Price(t.Price),
		TotalText:   format.TradeTotal(t.Amount, t.Price),
		Trader:      t.Trader,
		TraderShort: format.TruncateAddress(t.Trader),
		ProfitLoss:  t.ProfitLoss,
		TimestampMs: t.Timestamp,
		Timestamp:   format.Timestamp(t.Timestamp),
		Clock:       format.Clock(t.Timestamp, loc),
	}
}

func newSocialView(opt domain.Optional[domain.SocialMetrics]) SocialView {
	m := opt.OrZero()
	return SocialView{
		Present:        opt.IsPresent(),
		HolderCount:    m.HolderCount,
		MentionCount:   m.MentionCount,
		SocialScore:    m.SocialScore,
		ScoreText:      format.Score(m.SocialScore),
		ScoreBar:       format.ScoreBar(m.SocialScore),
		Sentiment:      m.Sentiment,
		SentimentLabel: format.SentimentLabel(m.Sentiment),
	}
}

func newPricePoint(p *domain.HistoricalPricePoint) PricePoint {
	return PricePoint{
		TimestampMs: p.TimestampMs,
		Timestamp:   format.Timestamp(p.TimestampMs),
		Price:       p.Price,
	}
}

func newStatsView(s domain.SystemStats) StatsView {
	return StatsView{
		TotalCoins:      s.TotalCoins,
		ActiveCoins:     s.ActiveCoins,
		TotalVolume24h:  s.TotalVolume24h,
		VolumeText:      format.Volume(s.TotalVolume24h),
		TotalTrades:     s.TotalTrades,
		TotalProfitLoss: s.TotalProfitLoss,
		ProfitLossText:  format.ProfitLoss(s.TotalProfitLoss),
		GeneratedAt:     format.Timestamp(s.GeneratedAt),
	}
}
