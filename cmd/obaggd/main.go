package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/keyrock-quant/obagg/internal/admin"
	"github.com/keyrock-quant/obagg/internal/aggregator"
	"github.com/keyrock-quant/obagg/internal/broadcast"
	"github.com/keyrock-quant/obagg/internal/config"
	"github.com/keyrock-quant/obagg/internal/feed/binance"
	"github.com/keyrock-quant/obagg/internal/feed/bitstamp"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/keyrock-quant/obagg/internal/rpc"
	"github.com/keyrock-quant/obagg/internal/sink"
	"github.com/keyrock-quant/obagg/pkg/logger"
	pb "github.com/keyrock-quant/obagg/pkg/proto/orderbook"
	"github.com/keyrock-quant/obagg/pkg/shutdown"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		fmt.Println("Failed to parse flags:", err)
		os.Exit(1)
	}

	logger.InitLogger(os.Getenv("LOG_LEVEL"))
	log := logger.Get()

	lis, err := net.Listen("tcp", fmt.Sprintf("[::1]:%d", cfg.Port))
	if err != nil {
		bindErr := &rpc.BindError{Cause: err}
		log.Error().Err(bindErr).Int("port", cfg.Port).Msg("failed to bind gRPC listener")
		os.Exit(1)
	}

	sd := shutdown.NewShutdown(*log)

	bcast := broadcast.New()
	sd.HookShutdownCallback("broadcaster", bcast.Close, time.Second)

	var adminRouter *admin.Router
	if cfg.AdminPort != 0 {
		adminRouter = admin.NewRouter()
		go func() {
			addr := fmt.Sprintf(":%d", cfg.AdminPort)
			log.Info().Str("addr", addr).Msg("admin HTTP listening")
			if err := adminRouter.Run(addr); err != nil {
				log.Error().Err(err).Msg("admin HTTP server stopped")
			}
		}()
	}

	var natsPublisher *sink.NATSPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err = sink.NewNATSPublisher(cfg.NATSURL, cfg.Symbol, *log)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to nats, continuing without fan-out")
			natsPublisher = nil
		} else {
			sd.HookShutdownCallback("nats-publisher", natsPublisher.Close, 2*time.Second)
		}
	}

	loop := &aggregator.Loop{
		Symbol: cfg.Symbol,
		Sources: [2]aggregator.Source{
			{Exchange: orderbook.Binance, Dial: binance.Dial, Decode: binance.Decode},
			{Exchange: orderbook.Bitstamp, Dial: bitstamp.Dial, Decode: bitstamp.Decode},
		},
		Broadcaster: bcast,
		Logger:      *log,
		Reconnect:   cfg.Reconnect,
	}

	if natsPublisher != nil {
		go forwardToNATS(sd.Context(), bcast, natsPublisher)
	}
	if adminRouter != nil {
		go markReadyOnFirstPublish(sd.Context(), bcast, adminRouter)
	}

	go func() {
		if err := loop.Run(sd.Context()); err != nil {
			log.Error().Err(err).Msg("aggregator loop exited with a fatal error")
			sd.ShutdownNow()
			os.Exit(1)
		}
	}()

	grpcServer := grpc.NewServer()
	pb.RegisterOrderbookAggregatorServer(grpcServer, &rpc.Service{Broadcaster: bcast, Logger: *log})

	sd.HookShutdownCallback("grpc-server", grpcServer.GracefulStop, 5*time.Second)

	go func() {
		log.Info().Str("addr", lis.Addr().String()).Str("symbol", cfg.Symbol).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	sd.WaitForShutdown(syscall.SIGINT, syscall.SIGTERM)
}

func forwardToNATS(ctx context.Context, bcast *broadcast.Broadcaster, pub *sink.NATSPublisher) {
	cursor := bcast.Subscribe()
	for {
		tick, err := cursor.Next(ctx)
		if err != nil {
			return
		}
		pub.Publish(tick)
	}
}

func markReadyOnFirstPublish(ctx context.Context, bcast *broadcast.Broadcaster, r *admin.Router) {
	cursor := bcast.Subscribe()
	// the first Next returns the cold-start value without waiting, so the
	// second one is what waits for the aggregator's first merge
	if _, err := cursor.Next(ctx); err != nil {
		return
	}
	if _, err := cursor.Next(ctx); err == nil {
		r.MarkReady()
	}
}
