// Package orderbook holds the data model and the merge algorithm at the
// center of the aggregation pipeline: per-exchange depth snapshots go in,
// one consolidated top-of-book snapshot comes out.
package orderbook

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DEPTH is the number of price levels retained per side, both per exchange
// and in the consolidated output. Shared by every decoder and the merger.
const DEPTH = 10

// Exchange identifies the venue a Level or InTick originated from.
type Exchange int

const (
	Bitstamp Exchange = iota
	Binance
)

// String returns the canonical lower-case name used in logs and on the
// RPC wire.
func (e Exchange) String() string {
	switch e {
	case Bitstamp:
		return "bitstamp"
	case Binance:
		return "binance"
	default:
		return "unknown"
	}
}

// Side identifies which side of the book a Level belongs to.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Level is one price point on one side of one exchange's book.
type Level struct {
	Side     Side
	Price    decimal.Decimal
	Amount   decimal.Decimal
	Exchange Exchange
}

// NewLevel constructs a Level. Callers are expected to have already
// filtered Amount == 0 (a deletion at the source, per the feed decoders).
func NewLevel(side Side, price, amount decimal.Decimal, exchange Exchange) Level {
	return Level{Side: side, Price: price, Amount: amount, Exchange: exchange}
}

// InTick is one decoded depth snapshot from a single exchange, already
// truncated to DEPTH per side by the decoder that produced it.
type InTick struct {
	Exchange Exchange
	Bids     []Level
	Asks     []Level
}

// OutTick is the consolidated snapshot published to every subscriber.
type OutTick struct {
	Spread decimal.Decimal
	Bids   []Level
	Asks   []Level
}

// NewOutTick returns the zero-value snapshot: zero spread, no levels. This
// is the broadcaster's cold-start value before anything has been published.
func NewOutTick() OutTick {
	return OutTick{Spread: decimal.Zero, Bids: []Level{}, Asks: []Level{}}
}

// NormalizeSymbol lower-cases a "BASE/QUOTE" pair and strips the
// separator, producing the form every decoder's connection URL expects
// (e.g. "ETH/BTC" -> "ethbtc").
func NormalizeSymbol(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "/", ""))
}
