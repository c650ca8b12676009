package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/keyrock-quant/obagg/internal/config"
	pb "github.com/keyrock-quant/obagg/pkg/proto/orderbook"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	cfg, err := config.ParseDashboardFlags(os.Args[1:])
	if err != nil {
		fmt.Println("Failed to parse flags:", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Println("did not connect:", err)
		os.Exit(1)
	}
	defer conn.Close()

	client := pb.NewOrderbookAggregatorClient(conn)

	stream, err := client.BookSummary(context.Background(), &pb.Empty{})
	if err != nil {
		fmt.Println("failed to open book summary stream:", err)
		os.Exit(1)
	}

	for {
		summary, err := stream.Recv()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Println("stream error:", err)
			os.Exit(1)
		}
		printSummary(summary)
	}
}

func printSummary(s *pb.Summary) {
	fmt.Printf("spread=%.8f\n", s.Spread)
	fmt.Println("  bids:")
	for _, l := range s.Bids {
		fmt.Printf("    %-10s %-18.8f %-18.8f %s\n", "bid", l.Price, l.Amount, l.Exchange)
	}
	fmt.Println("  asks:")
	for _, l := range s.Asks {
		fmt.Printf("    %-10s %-18.8f %-18.8f %s\n", "ask", l.Price, l.Amount, l.Exchange)
	}
}
