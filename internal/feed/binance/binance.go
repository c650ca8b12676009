// Package binance decodes Binance's partial-depth websocket stream into
// the shared orderbook.InTick shape.
package binance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/shopspring/decimal"
)

const urlTemplate = "wss://stream.binance.com:9443/ws/%s@depth%d@100ms"

// Dial connects to Binance's partial book depth stream for symbol, already
// normalized by the caller (internal/orderbook.NormalizeSymbol).
func Dial(ctx context.Context, dialer *websocket.Dialer, symbol string) (*websocket.Conn, error) {
	url := fmt.Sprintf(urlTemplate, symbol, orderbook.DEPTH)
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// depthEvent mirrors the JSON shape of a partial depth update:
// {"lastUpdateId":..., "bids":[["price","qty"],...], "asks":[...]}.
type depthEvent struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// Decode parses one websocket frame into an InTick. Non-text frames
// (pings, binary control frames) carry no book data and are ignored.
func Decode(messageType int, payload []byte) (*orderbook.InTick, error) {
	if messageType != websocket.TextMessage {
		return nil, nil
	}

	var event depthEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	bids, err := decodeLevels(event.Bids, orderbook.Bid)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}
	asks, err := decodeLevels(event.Asks, orderbook.Ask)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	return &orderbook.InTick{
		Exchange: orderbook.Binance,
		Bids:     bids,
		Asks:     asks,
	}, nil
}

func decodeLevels(raw [][]string, side orderbook.Side) ([]orderbook.Level, error) {
	levels := make([]orderbook.Level, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("malformed level %v", pair)
		}
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, err
		}
		if amount.IsZero() {
			continue
		}
		levels = append(levels, orderbook.NewLevel(side, price, amount, orderbook.Binance))
		if len(levels) == orderbook.DEPTH {
			break
		}
	}
	return levels, nil
}
