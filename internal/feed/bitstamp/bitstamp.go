// Package bitstamp decodes Bitstamp's diff order book websocket channel
// into the shared orderbook.InTick shape.
package bitstamp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/shopspring/decimal"
)

const wsURL = "wss://ws.bitstamp.net"

// subscribeFrame is the control message Bitstamp expects after connecting,
// naming the diff order book channel for the requested symbol.
type subscribeFrame struct {
	Event string `json:"event"`
	Data  struct {
		Channel string `json:"channel"`
	} `json:"data"`
}

// Dial connects to Bitstamp's shared websocket endpoint and subscribes to
// the diff order book channel for symbol. Unlike Binance, the symbol does
// not appear in the URL, it appears in a subscribe frame sent right after
// the handshake.
func Dial(ctx context.Context, dialer *websocket.Dialer, symbol string) (*websocket.Conn, error) {
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	frame := subscribeFrame{Event: "bts:subscribe"}
	frame.Data.Channel = "diff_order_book_" + symbol

	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// diffEvent mirrors {"event":..., "channel":..., "data":{"bids":[...],
// "asks":[...], "microtimestamp":"..."}}. Only event == "data" frames
// carry book content; subscription acks and heartbeats use other events.
type diffEvent struct {
	Event string `json:"event"`
	Data  struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	} `json:"data"`
}

// Decode parses one websocket frame into an InTick, or (nil, nil) for
// frames that carry no book data.
func Decode(messageType int, payload []byte) (*orderbook.InTick, error) {
	if messageType != websocket.TextMessage {
		return nil, nil
	}

	var event diffEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("bitstamp: %w", err)
	}

	if event.Event != "data" {
		return nil, nil
	}

	bids, err := decodeLevels(event.Data.Bids, orderbook.Bid)
	if err != nil {
		return nil, fmt.Errorf("bitstamp: %w", err)
	}
	asks, err := decodeLevels(event.Data.Asks, orderbook.Ask)
	if err != nil {
		return nil, fmt.Errorf("bitstamp: %w", err)
	}

	return &orderbook.InTick{
		Exchange: orderbook.Bitstamp,
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
		levels = append(levels, orderbook.NewLevel(side, price, amount, orderbook.Bitstamp))
		if len(levels) == orderbook.DEPTH {
			break
		}
	}
	return levels, nil
}
