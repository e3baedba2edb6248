package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"coin-dashboard/internal/observability"
)

// DefaultEndpoint is the public PumpPortal data stream.
const DefaultEndpoint = "wss://pumpportal.fun/api/data"

// ClientConfig configures WebSocket client behavior.
type ClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// BufferSize is the capacity of the events channel.
	BufferSize int
}

// DefaultClientConfig returns default WebSocket configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		BufferSize:        10000,
	}
}

// Client streams PumpPortal events over a WebSocket connection.
// It reconnects with exponential backoff and replays its subscriptions.
type Client struct {
	endpoint string
	config   ClientConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// subscription state replayed after reconnect
	newTokens bool
	mints     map[string]struct{}
	subMu     sync.Mutex

	events chan *Event
	done   chan struct{}
	wg     sync.WaitGroup

	reconnects atomic.Int64
}

// NewClient creates a client and connects to the endpoint. A failed first
// dial is not fatal: the client keeps retrying with backoff and replays any
// subscriptions made in the meantime once connected.
func NewClient(ctx context.Context, endpoint string, config *ClientConfig, logger *log.Logger) (*Client, error) {
	cfg := DefaultClientConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultClientConfig().BufferSize
	}
	if logger == nil {
		logger = log.Default()
	}
	if endpoint == "" {
		return nil, fmt.Errorf("feed endpoint is required")
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		mints:    make(map[string]struct{}),
		events:   make(chan *Event, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		c.logger.Printf("initial connect failed, retrying in background: %v", err)
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Events returns the channel of decoded events. It is closed by Close.
func (c *Client) Events() <-chan *Event {
	return c.events
}

// Reconnects returns the number of successful reconnects.
func (c *Client) Reconnects() int64 {
	return c.reconnects.Load()
}

// Connected reports whether the client currently holds a connection.
func (c *Client) Connected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

// connect establishes WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// SubscribeNewTokens subscribes to coin creation events.
func (c *Client) SubscribeNewTokens() error {
	c.subMu.Lock()
	c.newTokens = true
	c.subMu.Unlock()

	return c.send(subscribeRequest{Method: "subscribeNewToken"})
}

// SubscribeTrades subscribes to trade events of the given mints.
// Mints already subscribed are skipped.
func (c *Client) SubscribeTrades(mints ...string) error {
	c.subMu.Lock()
	var fresh []string
	for _, m := range mints {
		if _, ok := c.mints[m]; ok {
			continue
		}
		c.mints[m] = struct{}{}
		fresh = append(fresh, m)
	}
	c.subMu.Unlock()

	if len(fresh) == 0 {
		return nil
	}
	return c.send(subscribeRequest{Method: "subscribeTokenTrade", Keys: fresh})
}

// send writes a subscription message on the current connection. While
// disconnected the request is dropped; resubscribeAll replays it on connect.
func (c *Client) send(req subscribeRequest) error {
	if c.closed.Load() {
		return fmt.Errorf("client closed")
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return nil
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write %s: %w", req.Method, err)
	}
	return nil
}

// Close closes the WebSocket connection and the events channel.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.events)
	return nil
}

// readLoop reads messages and forwards events until Close.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.reconnect() {
				return
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.logger.Printf("read error: %v", err)
			if !c.reconnect() {
				return
			}
			continue
		}

		c.handleMessage(message)
	}
}

// reconnect dials again with exponential backoff and resubscribes.
// Returns false when the client was closed while waiting.
func (c *Client) reconnect() bool {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	delay := c.config.ReconnectDelay
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := c.connect(ctx)
		cancel()
		if err == nil {
			break
		}

		c.logger.Printf("reconnect failed, retrying in %s: %v", delay, err)
		delay *= 2
		if delay > c.config.MaxReconnectDelay {
			delay = c.config.MaxReconnectDelay
		}
	}

	if c.closed.Load() {
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.connMu.Unlock()
		return false
	}

	c.reconnects.Add(1)
	observability.RecordFeedReconnect()
	c.resubscribeAll()
	return true
}

// resubscribeAll replays the active subscriptions after reconnect.
func (c *Client) resubscribeAll() {
	c.subMu.Lock()
	newTokens := c.newTokens
	mints := make([]string, 0, len(c.mints))
	for m := range c.mints {
		mints = append(mints, m)
	}
	c.subMu.Unlock()

	if newTokens {
		if err := c.send(subscribeRequest{Method: "subscribeNewToken"}); err != nil {
			c.logger.Printf("resubscribe new tokens: %v", err)
		}
	}
	if len(mints) > 0 {
		if err := c.send(subscribeRequest{Method: "subscribeTokenTrade", Keys: mints}); err != nil {
			c.logger.Printf("resubscribe trades (%d mints): %v", len(mints), err)
		}
	}
}

// handleMessage decodes a message and forwards it to the events channel.
func (c *Client) handleMessage(data []byte) {
	start := time.Now()
	defer func() { observability.RecordWSMessage(time.Since(start).Seconds()) }()

	ev, err := parseEvent(data)
	if err != nil {
		observability.RecordFeedError("unknown", "decode")
		c.logger.Printf("skip message: %v", err)
		return
	}
	if ev == nil {
		return
	}

	// Blocking send applies backpressure to the socket; the buffer absorbs bursts.
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.logger.Printf("ping failed: %v", err)
				}
			}
			c.connMu.Unlock()
		}
	}
}
