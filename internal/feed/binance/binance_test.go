package binance

import (
	"fmt"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/shopspring/decimal"
)

func TestDecodeParsesDepthSnapshot(t *testing.T) {
	payload := []byte(`{
		"lastUpdateId": 42,
		"bids": [["100.50", "1.25"], ["100.25", "2.00"]],
		"asks": [["101.00", "0.75"]]
	}`)

	tick, err := Decode(websocket.TextMessage, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick == nil {
		t.Fatal("expected a tick, got nil")
	}
	if tick.Exchange != orderbook.Binance {
		t.Fatalf("expected Binance exchange tag, got %s", tick.Exchange)
	}
	if len(tick.Bids) != 2 || len(tick.Asks) != 1 {
		t.Fatalf("expected 2 bids and 1 ask, got %d/%d", len(tick.Bids), len(tick.Asks))
	}
	if !tick.Bids[0].Price.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("first bid price = %s, want 100.50", tick.Bids[0].Price)
	}
}

func TestDecodeDropsZeroAmountLevels(t *testing.T) {
	payload := []byte(`{"bids": [["100.00", "0"]], "asks": []}`)

	tick, err := Decode(websocket.TextMessage, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tick.Bids) != 0 {
		t.Fatalf("zero-amount level should be dropped, got %d bids", len(tick.Bids))
	}
}

func TestDecodeIgnoresNonTextFrames(t *testing.T) {
	tick, err := Decode(websocket.PingMessage, []byte("ping"))
	if err != nil {
		t.Fatalf("unexpected error on ping frame: %v", err)
	}
	if tick != nil {
		t.Fatal("expected nil tick for a non-text frame")
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := Decode(websocket.TextMessage, []byte("not json"))
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDecodeTruncatesToDepth(t *testing.T) {
	var sb string
	sb = `{"bids": [`
	for i := 0; i < orderbook.DEPTH+5; i++ {
		if i > 0 {
			sb += ","
		}
		sb += `["` + priceAt(100-i) + `", "1"]`
	}
	sb += `], "asks": []}`

	tick, err := Decode(websocket.TextMessage, []byte(sb))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tick.Bids) != orderbook.DEPTH {
		t.Fatalf("expected decode to truncate to %d bids, got %d", orderbook.DEPTH, len(tick.Bids))
	}
}

func priceAt(n int) string {
	return fmt.Sprintf("%d.00", n)
}
