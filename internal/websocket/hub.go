// Package websocket streams live quote updates to dashboard clients.
// Clients subscribe to tickers over the socket; a background poller
// fetches the latest price for every subscribed ticker and the hub
// fans each quote out to its subscribers.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// Server → client message types.
const (
	TypeConnected = "connected"
	TypeQuote     = "quote"
	TypeError     = "error"
)

// Client → server actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Envelope is the wire format in both directions.
type Envelope struct {
	Type    string            `json:"type,omitempty"`
	Action  string            `json:"action,omitempty"`
	Ticker  string            `json:"ticker,omitempty"`
	Message string            `json:"message,omitempty"`
	Quote   *marketdata.Quote `json:"quote,omitempty"`
}

// Hub tracks connected clients and routes quotes to subscribers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	quotes     chan marketdata.Quote
	quit       chan struct{}

	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	pongWait   time.Duration

	logger *slog.Logger

	runOnce  sync.Once
	stopOnce sync.Once
}

// NewHub creates a hub. Call Start before serving connections.
func NewHub(cfg config.WebSocketConfig, logger *slog.Logger) *Hub {
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quotes:     make(chan marketdata.Quote, 64),
		quit:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// Same-origin dashboard; the CORS layer guards the rest of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub loop.
func (h *Hub) Start() {
	h.runOnce.Do(func() { go h.run() })
}

// Stop shuts the hub down and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// addClient hands a new client to the run loop. Returns false when the
// hub has already stopped, so the caller can close the connection
// instead of blocking on a channel nothing reads.
func (h *Hub) addClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// dropClient removes a client, tolerating a hub that already stopped.
func (h *Hub) dropClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", slog.Int("clients", count))

		case quote := <-h.quotes:
			h.deliver(quote)
		}
	}
}

// BroadcastQuote queues a quote for delivery to its subscribers. Drops
// the quote when the hub is backed up; the next poll refreshes it.
func (h *Hub) BroadcastQuote(quote marketdata.Quote) {
	select {
	case h.quotes <- quote:
	default:
		h.logger.Warn("quote dropped, hub backlogged", slog.String("ticker", quote.Ticker))
	}
}

func (h *Hub) deliver(quote marketdata.Quote) {
	payload, err := json.Marshal(Envelope{Type: TypeQuote, Ticker: quote.Ticker, Quote: &quote})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.subscribed(quote.Ticker) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Slow consumer; skip rather than block the hub.
		}
	}
}

// SubscribedTickers returns the sorted union of tickers any client is
// watching. The quote poller uses this as its fetch list.
func (h *Hub) SubscribedTickers() []string {
	set := make(map[string]bool)

	h.mu.RLock()
	for client := range h.clients {
		for _, ticker := range client.subscriptions() {
			set[ticker] = true
		}
	}
	h.mu.RUnlock()

	out := make([]string, 0, len(set))
	for ticker := range set {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
