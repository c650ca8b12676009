package rpc

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/keyrock-quant/obagg/internal/broadcast"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	pb "github.com/keyrock-quant/obagg/pkg/proto/orderbook"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

// fakeStream satisfies pb.OrderbookAggregator_BookSummaryServer (a
// grpc.ServerStreamingServer[Summary] alias) well enough to drive
// Service.BookSummary without a real network connection.
type fakeStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent chan *pb.Summary
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) Send(s *pb.Summary) error {
	select {
	case f.sent <- s:
		return nil
	case <-f.ctx.Done():
		return io.EOF
	}
}

func TestBookSummaryStreamsCurrentValueThenUpdates(t *testing.T) {
	bcast := broadcast.New()
	bcast.Publish(orderbook.OutTick{
		Spread: decimal.RequireFromString("1.5"),
		Bids:   []orderbook.Level{orderbook.NewLevel(orderbook.Bid, decimal.RequireFromString("100"), decimal.RequireFromString("1"), orderbook.Binance)},
	})

	svc := &Service{Broadcaster: bcast, Logger: zerolog.New(io.Discard)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeStream{ctx: ctx, sent: make(chan *pb.Summary, 4)}

	errCh := make(chan error, 1)
	go func() { errCh <- svc.BookSummary(&pb.Empty{}, stream) }()

	select {
	case summary := <-stream.sent:
		if summary.Spread != 1.5 {
			t.Fatalf("expected spread 1.5, got %v", summary.Spread)
		}
		if len(summary.Bids) != 1 || summary.Bids[0].Exchange != "binance" {
			t.Fatalf("expected one binance bid, got %+v", summary.Bids)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive the initial snapshot")
	}

	bcast.Publish(orderbook.OutTick{Spread: decimal.RequireFromString("2.0")})

	select {
	case summary := <-stream.sent:
		if summary.Spread != 2.0 {
			t.Fatalf("expected spread 2.0 after publish, got %v", summary.Spread)
		}
	case <-time.After(time.Second):
		t.Fatal("did not receive the update")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected BookSummary to return nil on context cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("BookSummary did not return after context cancellation")
	}
}
