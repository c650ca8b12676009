package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/broadcast"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/shopspring/decimal"
)

// fakeServer runs a tiny websocket endpoint that sends a scripted sequence
// of text frames to whatever connects, then blocks until the test closes
// it. It stands in for a live exchange feed.
type fakeServer struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader
	frames     []string
}

func newFakeServer(frames []string) *fakeServer {
	fs := &fakeServer{frames: frames}
	fs.httpServer = httptest.NewServer(http.HandlerFunc(fs.handle))
	return fs
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := fs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for _, frame := range fs.frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}

	// keep the connection open until the client goes away, so the reader
	// goroutine blocks on ReadMessage exactly like it would against a
	// live feed with no more updates pending.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.httpServer.URL, "http")
}

func (fs *fakeServer) Close() {
	fs.httpServer.Close()
}

// fakeDial dials url directly, ignoring the symbol. The fake servers send
// frames of the form "price,amount", which fakeDecode parses back into an
// InTick with one bid level.
func fakeDial(url string) Dialer {
	return func(ctx context.Context, dialer *websocket.Dialer, symbol string) (*websocket.Conn, error) {
		conn, _, err := dialer.DialContext(ctx, url, nil)
		return conn, err
	}
}

func fakeDecode(exchange orderbook.Exchange) Decoder {
	return func(messageType int, payload []byte) (*orderbook.InTick, error) {
		if messageType != websocket.TextMessage {
			return nil, nil
		}
		if string(payload) == "skip" {
			return nil, nil
		}
		parts := strings.SplitN(string(payload), ",", 2)
		price := decimal.RequireFromString(parts[0])
		amount := decimal.RequireFromString(parts[1])
		return &orderbook.InTick{
			Exchange: exchange,
			Bids:     []orderbook.Level{orderbook.NewLevel(orderbook.Bid, price, amount, exchange)},
		}, nil
	}
}

func TestLoopMergesBothSourcesIntoBroadcastedSnapshots(t *testing.T) {
	binanceServer := newFakeServer([]string{"100,1"})
	defer binanceServer.Close()
	bitstampServer := newFakeServer([]string{"99,2"})
	defer bitstampServer.Close()

	bcast := broadcast.New()
	loop := &Loop{
		Symbol: "ETH/BTC",
		Sources: [2]Source{
			{Exchange: orderbook.Binance, Dial: fakeDial(binanceServer.wsURL()), Decode: fakeDecode(orderbook.Binance)},
			{Exchange: orderbook.Bitstamp, Dial: fakeDial(bitstampServer.wsURL()), Decode: fakeDecode(orderbook.Bitstamp)},
		},
		Broadcaster: bcast,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	cur := bcast.Subscribe()
	deadline := time.Now().Add(3 * time.Second)
	var seenBothExchanges bool
	for time.Now().Before(deadline) {
		nctx, ncancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		tick, err := cur.Next(nctx)
		ncancel()
		if err != nil {
			continue
		}
		if len(tick.Bids) == 2 {
			seenBothExchanges = true
			break
		}
	}

	cancel()
	<-runErr

	if !seenBothExchanges {
		t.Fatal("expected a merged snapshot containing bids from both exchanges")
	}
}

func TestLoopReturnsFatalTransportErrorByDefault(t *testing.T) {
	goodServer := newFakeServer([]string{"100,1"})
	defer goodServer.Close()

	bcast := broadcast.New()
	loop := &Loop{
		Symbol: "ETH/BTC",
		Sources: [2]Source{
			{Exchange: orderbook.Binance, Dial: fakeDial(goodServer.wsURL()), Decode: fakeDecode(orderbook.Binance)},
			{
				Exchange: orderbook.Bitstamp,
				Dial: func(ctx context.Context, dialer *websocket.Dialer, symbol string) (*websocket.Conn, error) {
					return nil, &websocket.CloseError{Code: websocket.CloseAbnormalClosure, Text: "dial refused"}
				},
				Decode: fakeDecode(orderbook.Bitstamp),
			},
		},
		Broadcaster: bcast,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := loop.Run(ctx)
	if err == nil {
		t.Fatal("expected a fatal error when a source fails to dial")
	}
}

func TestLoopStopsCleanlyOnContextCancellation(t *testing.T) {
	server := newFakeServer([]string{"100,1"})
	defer server.Close()
	other := newFakeServer([]string{"99,1"})
	defer other.Close()

	bcast := broadcast.New()
	loop := &Loop{
		Symbol: "ETH/BTC",
		Sources: [2]Source{
			{Exchange: orderbook.Binance, Dial: fakeDial(server.wsURL()), Decode: fakeDecode(orderbook.Binance)},
			{Exchange: orderbook.Bitstamp, Dial: fakeDial(other.wsURL()), Decode: fakeDecode(orderbook.Bitstamp)},
		},
		Broadcaster: bcast,
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("expected nil error on clean cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
