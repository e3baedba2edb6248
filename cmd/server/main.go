// Package main provides the unified dashboard server that runs all components together:
// - Live feed (continuous): PumpPortal coin launches and trades into the stores
// - Market monitor (scheduled): 24h change/volume, token supply, retention, RPC health
// - HTTP API: dashboard and coin detail views, trades and coins polling endpoints
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"coin-dashboard/internal/api"
	"coin-dashboard/internal/feed"
	"coin-dashboard/internal/market"
	"coin-dashboard/internal/solana"
	"coin-dashboard/internal/storage"
	chstore "coin-dashboard/internal/storage/clickhouse"
	"coin-dashboard/internal/storage/memory"
	"coin-dashboard/internal/storage/migrations"
	pgstore "coin-dashboard/internal/storage/postgres"
	redisstore "coin-dashboard/internal/storage/redis"
	"coin-dashboard/internal/view"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	httpAddr        string
	rpcEndpoint     string
	rpcTimeout      time.Duration
	rpcRetries      int
	wsEndpoint      string
	enableFeed      bool
	feedRetryDelay  time.Duration
	metadataTimeout time.Duration
	monitorInterval time.Duration
	retention       time.Duration
	location        *time.Location

	// Stores
	stores *allStores

	// Components
	rpc     solana.RPCClient
	monitor *market.Monitor
	logger  *log.Logger

	// State
	mu          sync.Mutex
	started     time.Time
	feedClient  *feed.Client
	feedStarted time.Time
	feedErr     error
}

// allStores holds all storage implementations and their health checks.
type allStores struct {
	coinStore   storage.CoinStore
	tradeStore  storage.TradeStore
	priceStore  storage.PriceHistoryStore
	socialStore storage.SocialMetricsStore

	healthChecks []api.HealthCheck
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint (optional)")
	rpcTimeout := flag.Duration("rpc-timeout", solana.DefaultTimeout, "Solana RPC request timeout")
	rpcRetries := flag.Int("rpc-retries", solana.DefaultMaxRetries, "Solana RPC retries per call")
	wsEndpoint := flag.String("ws-endpoint", envOr("PUMPPORTAL_WS_ENDPOINT", feed.DefaultEndpoint), "PumpPortal WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for social metrics")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse/Redis")
	enableFeed := flag.Bool("feed", true, "Ingest the live PumpPortal feed")
	metadataTimeout := flag.Duration("metadata-timeout", 3*time.Second, "Timeout for fetching new coin metadata (0 disables)")
	feedRetryDelay := flag.Duration("feed-retry", 5*time.Second, "Delay before restarting a failed live feed")
	monitorInterval := flag.Duration("monitor-interval", 60*time.Second, "Market monitor run interval")
	retention := flag.Duration("retention", 7*24*time.Hour, "Trade and price history retention")
	timezone := flag.String("timezone", envOr("DASHBOARD_TZ", "UTC"), "IANA zone for dashboard trade clocks")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "" || *redisAddr == "") {
		logger.Fatal("--postgres-dsn, --clickhouse-dsn and --redis-addr are required (use --use-memory for in-memory storage)")
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		logger.Fatalf("Invalid --timezone %q: %v", *timezone, err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *redisAddr, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		httpAddr:        *httpAddr,
		rpcEndpoint:     *rpcEndpoint,
		rpcTimeout:      *rpcTimeout,
		rpcRetries:      *rpcRetries,
		wsEndpoint:      *wsEndpoint,
		enableFeed:      *enableFeed,
		feedRetryDelay:  *feedRetryDelay,
		metadataTimeout: *metadataTimeout,
		monitorInterval: *monitorInterval,
		retention:       *retention,
		location:        loc,
		stores:          stores,
		logger:          logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN, redisAddr string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			coinStore:   memory.NewCoinStore(),
			tradeStore:  memory.NewTradeStore(),
			priceStore:  memory.NewPriceHistoryStore(),
			socialStore: memory.NewSocialMetricsStore(),
		}
		return stores, func() {}, nil
	}

	migrationLogger := log.New(os.Stdout, "[migrations] ", log.LstdFlags)

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool, migrationLogger); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouse(ctx, clickhouseDSN, migrationLogger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	// Redis
	redisCfg := redisstore.DefaultConfig()
	redisCfg.Addr = redisAddr
	redisCfg.Password = os.Getenv("REDIS_PASSWORD")
	rdb, err := redisstore.NewClient(ctx, redisCfg)
	if err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (coins + trades)
		coinStore:  pgstore.NewCoinStore(pool),
		tradeStore: pgstore.NewTradeStore(pool),

		// ClickHouse stores (price series)
		priceStore: chstore.NewPriceHistoryStore(chConn),

		// Redis stores (latest social snapshots)
		socialStore: redisstore.NewSocialMetricsStore(rdb),

		healthChecks: []api.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "clickhouse", Check: chConn.Ping},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	}

	cleanup := func() {
		rdb.Close()
		chConn.Close()
		pool.Close()
	}

	logger.Println("Connected to PostgreSQL, ClickHouse and Redis")
	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	if s.rpcEndpoint != "" {
		s.rpc = solana.NewHTTPClient(s.rpcEndpoint,
			solana.WithTimeout(s.rpcTimeout),
			solana.WithMaxRetries(s.rpcRetries),
		)
	} else {
		s.logger.Println("No --rpc-endpoint, token supply and RPC health checks disabled")
	}

	monitorCfg := market.DefaultConfig()
	monitorCfg.Interval = s.monitorInterval
	monitorCfg.Retention = s.retention
	s.monitor = market.NewMonitor(market.Options{
		Coins:  s.stores.coinStore,
		Trades: s.stores.tradeStore,
		Prices: s.stores.priceStore,
		RPC:    s.rpc,
		Config: monitorCfg,
		Logger: log.New(os.Stdout, "[monitor] ", log.LstdFlags|log.Lshortfile),
	})

	// Create error channel for goroutines
	errCh := make(chan error, 2)

	// Start live feed in background; its failures never stop the API
	if s.enableFeed {
		go s.superviseFeed(ctx)
	}

	// Start market monitor in background
	go func() {
		err := s.monitor.Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("monitor: %w", err)
		}
	}()

	// Start HTTP API in background
	go func() {
		err := api.NewServer(s.httpAddr, s.newHandler()).Run(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// newHandler wires the view service and health checks into the HTTP handler.
func (s *Server) newHandler() *api.Handler {
	viewCfg := view.DefaultConfig()
	viewCfg.Location = s.location

	views := view.NewService(view.Stores{
		Coins:  s.stores.coinStore,
		Trades: s.stores.tradeStore,
		Prices: s.stores.priceStore,
		Social: s.stores.socialStore,
	}, viewCfg, log.New(os.Stdout, "[view] ", log.LstdFlags|log.Lshortfile))

	checks := append([]api.HealthCheck(nil), s.stores.healthChecks...)
	if s.rpc != nil {
		checks = append(checks, api.HealthCheck{Name: "solana_rpc", Check: s.monitor.CheckRPC})
	}

	return api.NewHandler(api.Options{
		Views:        views,
		HealthChecks: checks,
		Status:       func() any { return s.status() },
		Logger:       log.New(os.Stdout, "[http] ", log.LstdFlags|log.Lshortfile),
	})
}

// superviseFeed restarts runFeed after feedRetryDelay until ctx is done.
func (s *Server) superviseFeed(ctx context.Context) {
	delay := s.feedRetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	for {
		err := s.runFeed(ctx)
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		s.feedClient = nil
		s.feedErr = err
		s.mu.Unlock()
		s.logger.Printf("Live feed stopped: %v, restarting in %v", err, delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runFeed streams PumpPortal events into the stores.
func (s *Server) runFeed(ctx context.Context) error {
	s.logger.Printf("Starting live feed from %s...", s.wsEndpoint)
	feedLogger := log.New(os.Stdout, "[feed] ", log.LstdFlags|log.Lshortfile)

	client, err := feed.NewClient(ctx, s.wsEndpoint, nil, feedLogger)
	if err != nil {
		return fmt.Errorf("create feed client: %w", err)
	}
	defer client.Close()

	if err := client.SubscribeNewTokens(); err != nil {
		return fmt.Errorf("subscribe new tokens: %w", err)
	}

	// Follow trades of coins already listed
	active, err := s.stores.coinStore.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active coins: %w", err)
	}
	if len(active) > 0 {
		mints := make([]string, len(active))
		for i, c := range active {
			mints[i] = c.Mint
		}
		if err := client.SubscribeTrades(mints...); err != nil {
			return fmt.Errorf("subscribe trades: %w", err)
		}
	}

	s.mu.Lock()
	s.feedClient = client
	s.feedStarted = time.Now()
	s.feedErr = nil
	s.mu.Unlock()

	ingestor := feed.NewIngestor(s.stores.coinStore, s.stores.tradeStore, s.stores.priceStore, client, feedLogger)
	if s.metadataTimeout > 0 {
		ingestor.SetMetadataFetcher(feed.NewHTTPMetadataFetcher(s.metadataTimeout))
	}
	s.logger.Printf("Live feed started, following %d coins", len(active))
	return ingestor.Run(ctx, client.Events())
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status         string        `json:"status"`
	Uptime         string        `json:"uptime"`
	Started        time.Time     `json:"started"`
	FeedEnabled    bool          `json:"feed_enabled"`
	FeedStarted    time.Time     `json:"feed_started,omitempty"`
	FeedConnected  bool          `json:"feed_connected"`
	FeedError      string        `json:"feed_error,omitempty"`
	FeedReconnects int64         `json:"feed_reconnects"`
	RPCConfigured  bool          `json:"rpc_configured"`
	Monitor        market.Status `json:"monitor"`
}

// status builds the /status body.
func (s *Server) status() StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).String(),
		Started:       s.started,
		FeedEnabled:   s.enableFeed,
		FeedStarted:   s.feedStarted,
		RPCConfigured: s.rpc != nil,
		Monitor:       s.monitor.Status(),
	}
	if s.feedClient != nil {
		resp.FeedReconnects = s.feedClient.Reconnects()
		resp.FeedConnected = s.feedClient.Connected()
	}
	if s.feedErr != nil {
		resp.FeedError = s.feedErr.Error()
	}
	return resp
}

// envOr returns the environment variable or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
