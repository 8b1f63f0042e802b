package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solana-sniper/internal/domain"
)

// StreamConfig configures streaming price subscriber behavior.
type StreamConfig struct {
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
}

// DefaultStreamConfig returns default streaming configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Stream maintains a WebSocket subscription for live token prices and
// feeds every update into a Source cache. The connection reconnects
// with exponential backoff and resubscribes to all tracked tokens.
type Stream struct {
	endpoint string
	apiKey   string
	config   StreamConfig
	source   *Source
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// tokens holds mint addresses to resubscribe after reconnect
	tokens   map[string]struct{}
	tokensMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewStream connects to the endpoint and starts the read and ping loops.
func NewStream(ctx context.Context, endpoint, apiKey string, source *Source, logger *log.Logger, config *StreamConfig) (*Stream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &Stream{
		endpoint: endpoint,
		apiKey:   apiKey,
		config:   cfg,
		source:   source,
		logger:   logger,
		tokens:   make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// connect establishes the WebSocket connection.
func (s *Stream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	endpoint := s.endpoint
	if s.apiKey != "" {
		endpoint += "?x-api-key=" + s.apiKey
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// Subscribe starts receiving price updates for a token mint.
func (s *Stream) Subscribe(tokenAddress string) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}
	if tokenAddress == "" {
		return fmt.Errorf("%w: token address is required", domain.ErrValidation)
	}

	s.tokensMu.Lock()
	s.tokens[tokenAddress] = struct{}{}
	s.tokensMu.Unlock()

	return s.writeSubscribe(tokenAddress)
}

// Unsubscribe stops receiving price updates for a token mint.
func (s *Stream) Unsubscribe(tokenAddress string) error {
	s.tokensMu.Lock()
	delete(s.tokens, tokenAddress)
	s.tokensMu.Unlock()

	if s.closed.Load() {
		return nil
	}

	msg := streamRequest{
		Type: "UNSUBSCRIBE_PRICE",
		Data: streamSubscribeData{Address: tokenAddress},
	}
	return s.write(msg)
}

func (s *Stream) writeSubscribe(tokenAddress string) error {
	msg := streamRequest{
		Type: "SUBSCRIBE_PRICE",
		Data: streamSubscribeData{
			Address:   tokenAddress,
			ChartType: "1m",
			Currency:  "usd",
		},
	}
	return s.write(msg)
}

func (s *Stream) write(msg streamRequest) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Type, err)
	}
	return nil
}

// Close closes the WebSocket connection and stops all loops.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil // Already closed
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads messages and dispatches price updates to the cache.
func (s *Stream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			// Connection error, reconnect with exponential backoff
			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

// reconnect attempts to reconnect and resubscribe all tracked tokens.
func (s *Stream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	s.tokensMu.Lock()
	tokens := make([]string, 0, len(s.tokens))
	for addr := range s.tokens {
		tokens = append(tokens, addr)
	}
	s.tokensMu.Unlock()

	for _, addr := range tokens {
		if err := s.writeSubscribe(addr); err != nil {
			s.logger.Printf("[pricing] resubscribe %s failed: %v", addr, err)
		}
	}
}

// handleMessage parses an incoming message and stores price updates.
func (s *Stream) handleMessage(message []byte) {
	var msg streamMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "PRICE_DATA":
		var data streamPriceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			s.logger.Printf("[pricing] bad price data: %v", err)
			return
		}

		observed := time.Now().UTC()
		if data.UnixTime > 0 {
			observed = time.Unix(data.UnixTime, 0).UTC()
		}

		s.source.Observe(&domain.PriceSnapshot{
			TokenAddress: data.Address,
			Price:        data.Close,
			Volume24h:    data.Volume,
			ObservedAt:   observed,
		})
	case "ERROR":
		s.logger.Printf("[pricing] stream error: %s", string(msg.Data))
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (s *Stream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			s.connMu.Unlock()
		}
	}
}

// WebSocket message types

type streamRequest struct {
	Type string              `json:"type"`
	Data streamSubscribeData `json:"data"`
}

type streamSubscribeData struct {
	Address   string `json:"address"`
	ChartType string `json:"chartType,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

type streamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type streamPriceData struct {
	Address  string  `json:"address"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
	UnixTime int64   `json:"unixTime"`
}
