package orderbook

import "github.com/shopspring/decimal"

// orderDepths holds the most recently seen bids/asks from one exchange.
// The aggregator loop replaces these wholesale on every InTick; there is
// no incremental diffing here, the exchanges already send full snapshots.
type orderDepths struct {
	bids []Level
	asks []Level
}

// Exchanges is the aggregator's per-exchange cache. It is owned
// exclusively by the aggregator loop - nothing else may touch it.
type Exchanges struct {
	bitstamp orderDepths
	binance  orderDepths
}

// NewExchanges returns an empty cache, as if neither exchange had ever
// sent a tick.
func NewExchanges() *Exchanges {
	return &Exchanges{}
}

func (e *Exchanges) depthsFor(exchange Exchange) *orderDepths {
	switch exchange {
	case Bitstamp:
		return &e.bitstamp
	case Binance:
		return &e.binance
	default:
		return nil
	}
}

// Update replaces the cached bids/asks for t.Exchange wholesale. An InTick
// with an empty side wipes that side's contribution - the source replaces
// unconditionally, it never merges old levels with new ones.
func (e *Exchanges) Update(t InTick) {
	d := e.depthsFor(t.Exchange)
	if d == nil {
		return
	}
	d.bids = t.Bids
	d.asks = t.Asks
}

// Merge produces the consolidated OutTick from the current cache. It is
// pure and deterministic: the same cache contents always yield a
// byte-identical OutTick.
func (e *Exchanges) Merge() OutTick {
	bids := mergeSide(e.bitstamp.bids, e.binance.bids, Bid)
	asks := mergeSide(e.bitstamp.asks, e.binance.asks, Ask)

	spread := decimal.Zero
	if len(bids) > 0 && len(asks) > 0 {
		spread = asks[0].Price.Sub(bids[0].Price)
	}

	return OutTick{Spread: spread, Bids: bids, Asks: asks}
}

// less implements the total order from spec §4.2: price first, then the
// side-specific amount tie-break, then exchange identity as the final,
// arbitrary-but-stable tie-break so the sort is never ambiguous.
func less(a, b Level, side Side) bool {
	cmp := a.Price.Cmp(b.Price)
	if cmp != 0 {
		if side == Bid {
			return cmp > 0 // bids: higher price first
		}
		return cmp < 0 // asks: lower price first
	}

	amtCmp := a.Amount.Cmp(b.Amount)
	if amtCmp != 0 {
		if side == Bid {
			return amtCmp > 0 // bids: larger amount ranks higher
		}
		return amtCmp < 0 // asks: larger amount ranks lower (later)
	}

	return a.Exchange < b.Exchange
}

func mergeSide(a, b []Level, side Side) []Level {
	merged := make([]Level, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)

	sortLevels(merged, side)

	if len(merged) > DEPTH {
		merged = merged[:DEPTH]
	}
	return merged
}

// sortLevels is a straightforward insertion sort: DEPTH is 10 and each
// side holds at most 2*DEPTH levels going in, so there is no benefit to
// pulling in sort.Slice for this.
func sortLevels(levels []Level, side Side) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && less(levels[j], levels[j-1], side); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}
