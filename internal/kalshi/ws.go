package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"kalshi-feature-lab/internal/domain"
)

// DefaultWSURL is the production trade API websocket.
const DefaultWSURL = "wss://api.elections.kalshi.com/trade-api/ws/v2"

// WSConfig configures websocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default websocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// TickerUpdate is one message from the ticker channel. Quotes are
// YES-side cents; Ts is Unix seconds.
type TickerUpdate struct {
	MarketTicker string   `json:"market_ticker"`
	Price        *float64 `json:"price"`
	YesBid       *float64 `json:"yes_bid"`
	YesAsk       *float64 `json:"yes_ask"`
	Volume       *float64 `json:"volume"`
	OpenInterest *float64 `json:"open_interest"`
	Ts           float64  `json:"ts"`
}

// Snapshot converts the update to a snapshot row. The ticker channel
// only carries the YES book; the NO side is its complement.
func (u *TickerUpdate) Snapshot() *domain.Snapshot {
	ts := u.Ts
	snap := &domain.Snapshot{
		Ticker:         u.MarketTicker,
		Timestamp:      &ts,
		Status:         "open",
		YesBid:         u.YesBid,
		YesAsk:         u.YesAsk,
		Volume:         u.Volume,
		OpenInterest:   u.OpenInterest,
		LastTradePrice: u.Price,
	}
	if u.YesAsk != nil && *u.YesAsk > 0 {
		nb := 100 - *u.YesAsk
		snap.NoBid = &nb
	}
	if u.YesBid != nil && *u.YesBid > 0 {
		na := 100 - *u.YesBid
		snap.NoAsk = &na
	}
	return snap
}

// WSClient streams ticker updates over a websocket connection,
// reconnecting and resubscribing on failure.
type WSClient struct {
	endpoint string
	config   WSConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// tickers to resubscribe after reconnect; empty means all markets
	tickers []string

	updates chan TickerUpdate
	done    chan struct{}
	wg      sync.WaitGroup
}

// wsCommand is an outgoing subscribe command.
type wsCommand struct {
	ID     uint64   `json:"id"`
	Cmd    string   `json:"cmd"`
	Params wsParams `json:"params"`
}

type wsParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

// wsMessage is an incoming frame.
type wsMessage struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

// NewWSClient connects, subscribes to the ticker channel for the given
// markets (all markets when tickers is empty) and starts streaming.
func NewWSClient(ctx context.Context, endpoint string, tickers []string, config *WSConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if endpoint == "" {
		endpoint = DefaultWSURL
	}

	c := &WSClient{
		endpoint: endpoint,
		config:   cfg,
		tickers:  tickers,
		updates:  make(chan TickerUpdate, 1024),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	if err := c.subscribe(); err != nil {
		c.closeConn()
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Updates returns the stream of ticker updates. The channel closes when
// the client shuts down.
func (c *WSClient) Updates() <-chan TickerUpdate {
	return c.updates
}

// Close shuts the client down and waits for its goroutines.
func (c *WSClient) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	c.closeConn()
	c.wg.Wait()
	close(c.updates)
	return nil
}

// connect establishes the websocket connection.
func (c *WSClient) connect(ctx context.Context) error {
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

// subscribe sends the ticker channel subscription.
func (c *WSClient) subscribe() error {
	cmd := wsCommand{
		ID:  c.requestID.Add(1),
		Cmd: "subscribe",
		Params: wsParams{
			Channels:      []string{"ticker"},
			MarketTickers: c.tickers,
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// readLoop reads frames, forwards ticker updates and drives reconnects.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.reconnect() {
				return
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			if !c.reconnect() {
				return
			}
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != "ticker" {
			// Subscription acks and errors are not forwarded.
			continue
		}

		var update TickerUpdate
		if err := json.Unmarshal(msg.Msg, &update); err != nil {
			continue
		}

		select {
		case c.updates <- update:
		case <-c.done:
			return
		}
	}
}

// reconnect re-dials with backoff and resubscribes.
// Returns false when the client is shutting down.
func (c *WSClient) reconnect() bool {
	c.closeConn()

	delay := c.config.ReconnectDelay
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := c.connect(ctx)
		cancel()
		if err == nil {
			if err := c.subscribe(); err == nil {
				return true
			}
			c.closeConn()
		}

		delay *= 2
		if delay > c.config.MaxReconnectDelay {
			delay = c.config.MaxReconnectDelay
		}
	}
}

// pingLoop keeps the connection alive.
func (c *WSClient) pingLoop() {
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
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

func (c *WSClient) closeConn() {
	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
}
