package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	hub := NewHub(config.Default().WebSocket, testLogger())
	hub.Start()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r, testLogger())
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return hub, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestServeWS_ConnectAndSubscribe(t *testing.T) {
	hub, conn := dialTestHub(t)

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeConnected, env.Type)

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionSubscribe, Ticker: "aapl"}))

	require.Eventually(t, func() bool {
		tickers := hub.SubscribedTickers()
		return len(tickers) == 1 && tickers[0] == "AAPL"
	}, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastQuote(marketdata.Quote{Ticker: "AAPL", Price: 187.2, Time: time.Now().UTC()})

	env = readEnvelope(t, conn)
	assert.Equal(t, TypeQuote, env.Type)
	assert.Equal(t, "AAPL", env.Ticker)
	require.NotNil(t, env.Quote)
	assert.InDelta(t, 187.2, env.Quote.Price, 0.001)
}

func TestServeWS_UnknownTicker(t *testing.T) {
	_, conn := dialTestHub(t)
	readEnvelope(t, conn) // connected ack

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionSubscribe, Ticker: "ZZZZ"}))

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeError, env.Type)
	assert.Equal(t, "ZZZZ", env.Ticker)
}

func TestServeWS_Unsubscribe(t *testing.T) {
	hub, conn := dialTestHub(t)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionSubscribe, Ticker: "TSLA"}))
	require.Eventually(t, func() bool {
		return len(hub.SubscribedTickers()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionUnsubscribe, Ticker: "TSLA"}))
	require.Eventually(t, func() bool {
		return len(hub.SubscribedTickers()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQuoteDelivery_OnlyToSubscribers(t *testing.T) {
	hub, conn := dialTestHub(t)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionSubscribe, Ticker: "MSFT"}))
	require.Eventually(t, func() bool {
		return len(hub.SubscribedTickers()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A quote for an unrelated ticker must not reach this client.
	hub.BroadcastQuote(marketdata.Quote{Ticker: "AAPL", Price: 1})
	hub.BroadcastQuote(marketdata.Quote{Ticker: "MSFT", Price: 2})

	env := readEnvelope(t, conn)
	assert.Equal(t, "MSFT", env.Ticker)
}

type fakeFetcher struct {
	calls chan string
}

func (f *fakeFetcher) FetchLatestQuote(ctx context.Context, ticker string) (marketdata.Quote, error) {
	select {
	case f.calls <- ticker:
	default:
	}
	return marketdata.Quote{Ticker: ticker, Price: 42, Time: time.Now().UTC()}, nil
}

func TestQuotePoller(t *testing.T) {
	hub, conn := dialTestHub(t)
	readEnvelope(t, conn)

	require.NoError(t, conn.WriteJSON(Envelope{Action: ActionSubscribe, Ticker: "NVDA"}))
	require.Eventually(t, func() bool {
		return len(hub.SubscribedTickers()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	fetcher := &fakeFetcher{calls: make(chan string, 8)}
	poller := NewQuotePoller(hub, fetcher, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	select {
	case ticker := <-fetcher.calls:
		assert.Equal(t, "NVDA", ticker)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never fetched")
	}

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeQuote, env.Type)
	assert.InDelta(t, 42.0, env.Quote.Price, 0.001)
}

func TestNewHub_PumpSettings(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{
		ReadBufferSize:  512,
		WriteBufferSize: 256,
		PingPeriod:      5 * time.Second,
		PongWait:        12 * time.Second,
	}, testLogger())
	assert.Equal(t, 512, hub.upgrader.ReadBufferSize)
	assert.Equal(t, 256, hub.upgrader.WriteBufferSize)
	assert.Equal(t, 5*time.Second, hub.pingPeriod)
	assert.Equal(t, 12*time.Second, hub.pongWait)

	hub = NewHub(config.WebSocketConfig{}, testLogger())
	assert.Equal(t, defaultPingPeriod, hub.pingPeriod)
	assert.Equal(t, defaultPongWait, hub.pongWait)
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	hub := NewHub(config.Default().WebSocket, testLogger())
	hub.Start()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		client := &Client{hub: hub, send: make(chan []byte, 1)}
		assert.False(t, hub.addClient(client))
		hub.dropClient(client)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client registration blocked after hub stop")
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub, _ := dialTestHub(t)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	payload, err := json.Marshal(Envelope{Type: TypeQuote, Ticker: "AAPL", Quote: &marketdata.Quote{Ticker: "AAPL", Price: 1.5}})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, "AAPL", env.Quote.Ticker)
}
