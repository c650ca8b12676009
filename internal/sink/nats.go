// Package sink holds optional downstream fan-out destinations for
// published snapshots. None of them are on the critical path: the gRPC
// stream is the only sink the aggregator depends on to make progress.
package sink

import (
	"encoding/json"
	"fmt"

	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher republishes every OutTick to a NATS subject as
// best-effort JSON. A failed publish is logged and otherwise ignored,
// it never blocks or kills the aggregator loop.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher connects to url and returns a publisher for
// orderbook.<symbol>.summary.
func NewNATSPublisher(url, symbol string, logger zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("sink: nats connect: %w", err)
	}
	return &NATSPublisher{
		conn:    conn,
		subject: fmt.Sprintf("orderbook.%s.summary", orderbook.NormalizeSymbol(symbol)),
		logger:  logger,
	}, nil
}

// wireSnapshot is the JSON shape published to NATS, float64 at this
// boundary for the same reason the RPC layer uses float64: downstream
// consumers outside this module don't carry decimal.Decimal.
type wireSnapshot struct {
	Spread float64     `json:"spread"`
	Bids   []wireLevel `json:"bids"`
	Asks   []wireLevel `json:"asks"`
}

type wireLevel struct {
	Side     string  `json:"side"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
	Exchange string  `json:"exchange"`
}

// Publish marshals tick and sends it to the configured subject. Errors
// are logged, never returned, callers are not expected to react to a
// failed best-effort publish.
func (p *NATSPublisher) Publish(tick orderbook.OutTick) {
	payload, err := json.Marshal(toWire(tick))
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to marshal snapshot for nats fan-out")
		return
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Msg("failed to publish snapshot to nats")
	}
}

// Close flushes and closes the underlying NATS connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

func toWire(tick orderbook.OutTick) wireSnapshot {
	spread, _ := tick.Spread.Float64()
	return wireSnapshot{
		Spread: spread,
		Bids:   toWireLevels(tick.Bids),
		Asks:   toWireLevels(tick.Asks),
	}
}

func toWireLevels(levels []orderbook.Level) []wireLevel {
	out := make([]wireLevel, 0, len(levels))
	for _, l := range levels {
		price, _ := l.Price.Float64()
		amount, _ := l.Amount.Float64()
		out = append(out, wireLevel{
			Side:     l.Side.String(),
			Price:    price,
			Amount:   amount,
			Exchange: l.Exchange.String(),
		})
	}
	return out
}
