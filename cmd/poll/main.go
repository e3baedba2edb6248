// Package main polls a running dashboard server the way a browser page does:
// the coin page refreshes its trade table every 15s, the dashboard refreshes
// coins every 10s and reloads fully every 30s.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coin-dashboard/internal/api"
	"coin-dashboard/internal/idhash"
	"coin-dashboard/internal/poller"
	"coin-dashboard/internal/view"
)

func main() {
	// Parse flags
	serverURL := flag.String("server", envOr("DASHBOARD_URL", "http://localhost:8080"), "Dashboard server base URL")
	mint := flag.String("coin", "", "Coin mint to follow (omit for the dashboard)")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	tradesInterval := flag.Duration("trades-interval", 15*time.Second, "Coin page trade refresh interval")
	coinsInterval := flag.Duration("coins-interval", 10*time.Second, "Dashboard coin refresh interval")
	reloadInterval := flag.Duration("reload-interval", 30*time.Second, "Dashboard full reload interval")
	outputJSON := flag.Bool("json", false, "Output updates as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[poll] ", log.LstdFlags)

	if *mint != "" && !idhash.ValidMint(*mint) {
		logger.Fatalf("--coin %q is not a valid mint address", *mint)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	client := api.NewClient(*serverURL, api.WithTimeout(*timeout))

	if *mint != "" {
		runCoinPage(ctx, client, *mint, *tradesInterval, *outputJSON, logger)
	} else {
		runDashboard(ctx, client, *coinsInterval, *reloadInterval, *outputJSON, logger)
	}

	logger.Println("Stopped")
}

func runCoinPage(ctx context.Context, client *api.Client, mint string, interval time.Duration, asJSON bool, logger *log.Logger) {
	cfg := poller.DefaultCoinPageConfig()
	cfg.Interval = interval

	var page *poller.CoinPage
	cfg.OnUpdate = func(added int) {
		rows := page.Table().Rows()
		if asJSON {
			printJSON(rows)
			return
		}
		fmt.Printf("--- %s: %d new, %d shown ---\n", mint, added, len(rows))
		printTrades(rows)
	}
	page = poller.NewCoinPage(client, mint, cfg, logger)

	// First load before the schedule starts.
	if err := page.Refresh(ctx); err != nil {
		logger.Printf("initial load: %v", err)
	}

	logger.Printf("Polling trades of %s every %v", mint, interval)
	page.Run(ctx)

	st := page.Stats()
	logger.Printf("coin_trades: %d runs, %d failures, %d skipped", st.Runs, st.Failures, st.Skipped)
}

func runDashboard(ctx context.Context, client *api.Client, coinsInterval, reloadInterval time.Duration, asJSON bool, logger *log.Logger) {
	cfg := poller.DefaultDashboardPageConfig()
	cfg.CoinsInterval = coinsInterval
	cfg.ReloadInterval = reloadInterval

	var page *poller.DashboardPage
	cfg.OnUpdate = func(kind string) {
		d := page.Board().Dashboard()
		if asJSON {
			printJSON(map[string]any{"kind": kind, "dashboard": d})
			return
		}
		printDashboard(kind, d)
	}
	page = poller.NewDashboardPage(client, cfg, logger)

	logger.Printf("Polling dashboard: coins every %v, full reload every %v", coinsInterval, reloadInterval)
	page.Run(ctx)

	coins, reload := page.Stats()
	logger.Printf("dashboard_coins: %d runs, %d failures, %d skipped", coins.Runs, coins.Failures, coins.Skipped)
	logger.Printf("dashboard_reload: %d runs, %d failures, %d skipped", reload.Runs, reload.Failures, reload.Skipped)
}

func printDashboard(kind string, d *view.Dashboard) {
	if d == nil {
		return
	}
	fmt.Printf("=== %s @ %s ===\n", kind, d.GeneratedAt)
	fmt.Printf("coins %d (active %d)  volume %s  trades %d  P/L %s\n",
		d.Stats.TotalCoins, d.Stats.ActiveCoins, d.Stats.VolumeText, d.Stats.TotalTrades, d.Stats.ProfitLossText)

	if d.EmptyCoins != nil {
		fmt.Printf("%s: %s\n", d.EmptyCoins.Title, d.EmptyCoins.Message)
	}
	for _, c := range d.Coins {
		fmt.Printf("%-10s %14s %9s  vol %12s  mcap %12s\n", c.Symbol, c.PriceText, c.ChangeText, c.VolumeText, c.MarketCapText)
	}

	if kind != poller.UpdateReload {
		return
	}
	if d.EmptyTrades != nil {
		fmt.Printf("%s: %s\n", d.EmptyTrades.Title, d.EmptyTrades.Message)
	}
	printTrades(d.RecentTrades)
}

func printTrades(rows []view.TradeView) {
	for _, t := range rows {
		fmt.Printf("%s %-4s %-8s %14s  %s\n", t.Clock, t.Side, t.Symbol, t.TotalText, t.TraderShort)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// envOr returns the environment variable or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
