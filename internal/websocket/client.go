package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// Pump defaults, used when the configured values are zero.
const (
	writeWait         = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = 30 * time.Second
	maxMessageSize    = 512
)

// Client is one connected dashboard browser.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	id     string
	logger *slog.Logger

	mu      sync.RWMutex
	tickers map[string]bool
}

// ServeWS upgrades an HTTP request and runs the client pumps. The
// handler returns once the upgrade completes; the pumps own the
// connection lifetime.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := uuid.New().String()
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 64),
		id:   id,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id)),
		tickers: make(map[string]bool),
	}

	if !hub.addClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	client.enqueue(Envelope{Type: TypeConnected})
}

func (c *Client) subscribed(ticker string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickers[ticker]
}

func (c *Client) subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tickers))
	for ticker := range c.tickers {
		out = append(out, ticker)
	}
	return out
}

// handleEnvelope applies one inbound subscribe/unsubscribe request.
func (c *Client) handleEnvelope(env Envelope) {
	switch env.Action {
	case ActionSubscribe:
		symbol, err := marketdata.LookupSymbol(env.Ticker)
		if err != nil {
			c.enqueue(Envelope{Type: TypeError, Ticker: env.Ticker, Message: "unknown ticker symbol"})
			return
		}
		c.mu.Lock()
		c.tickers[symbol.Ticker] = true
		c.mu.Unlock()
		c.logger.Debug("subscribed", slog.String("ticker", symbol.Ticker))

	case ActionUnsubscribe:
		ticker := marketdata.NormalizeTicker(env.Ticker)
		c.mu.Lock()
		delete(c.tickers, ticker)
		c.mu.Unlock()
		c.logger.Debug("unsubscribed", slog.String("ticker", ticker))

	default:
		c.enqueue(Envelope{Type: TypeError, Message: "unknown action"})
	}
}

func (c *Client) enqueue(env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.dropClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", slog.String("error", err.Error()))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.enqueue(Envelope{Type: TypeError, Message: "malformed message"})
			continue
		}
		c.handleEnvelope(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
