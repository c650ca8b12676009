// Package rpc implements the streaming gRPC service that fans the
// broadcaster's consolidated snapshots out to clients.
package rpc

import (
	"fmt"

	"github.com/keyrock-quant/obagg/internal/broadcast"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	pb "github.com/keyrock-quant/obagg/pkg/proto/orderbook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BindError wraps a failure to bind or start the gRPC listener.
type BindError struct {
	Cause error
}

func (e *BindError) Error() string { return fmt.Sprintf("rpc: bind: %v", e.Cause) }
func (e *BindError) Unwrap() error { return e.Cause }

var subscriberCount = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "obagg_rpc_subscribers",
	Help: "Number of active BookSummary streams.",
})

func init() {
	prometheus.MustRegister(subscriberCount)
}

// Service implements pb.OrderbookAggregatorServer over a single
// broadcaster. One Service instance serves every connected client.
type Service struct {
	pb.UnimplementedOrderbookAggregatorServer

	Broadcaster *broadcast.Broadcaster
	Logger      zerolog.Logger
}

// BookSummary streams the current consolidated snapshot, then every
// subsequent change, until the client disconnects or the server shuts
// the stream down.
func (s *Service) BookSummary(_ *pb.Empty, stream pb.OrderbookAggregator_BookSummaryServer) error {
	subscriberCount.Inc()
	defer subscriberCount.Dec()

	ctx := stream.Context()
	cursor := s.Broadcaster.Subscribe()
	s.Logger.Info().Str("subscriber", cursor.ID.String()).Msg("book summary stream opened")
	defer s.Logger.Info().Str("subscriber", cursor.ID.String()).Msg("book summary stream closed")

	for {
		tick, err := cursor.Next(ctx)
		if err != nil {
			return nil
		}

		if err := stream.Send(toProto(tick)); err != nil {
			s.Logger.Warn().Str("subscriber", cursor.ID.String()).Err(err).Msg("failed to send book summary to subscriber")
			return err
		}
	}
}

// toProto converts the decimal-backed domain snapshot to the float64 wire
// representation. Apart from the optional NATS sink's JSON encoding, this
// is the only place in the system decimal.Decimal crosses into float64.
func toProto(tick orderbook.OutTick) *pb.Summary {
	return &pb.Summary{
		Spread: mustFloat(tick.Spread),
		Bids:   toProtoLevels(tick.Bids),
		Asks:   toProtoLevels(tick.Asks),
	}
}

func toProtoLevels(levels []orderbook.Level) []*pb.Level {
	out := make([]*pb.Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, &pb.Level{
			Exchange: l.Exchange.String(),
			Price:    mustFloat(l.Price),
			Amount:   mustFloat(l.Amount),
		})
	}
	return out
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
