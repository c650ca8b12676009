// Package aggregator owns the fan-in loop: it dials both exchange feeds,
// decodes every incoming frame, folds the result into the shared
// orderbook cache, and publishes the merged snapshot to the broadcaster.
package aggregator

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/broadcast"
	"github.com/keyrock-quant/obagg/internal/feed"
	"github.com/keyrock-quant/obagg/internal/orderbook"
	"github.com/rs/zerolog"
)

// Dialer opens the websocket connection for one exchange's feed.
type Dialer func(ctx context.Context, dialer *websocket.Dialer, symbol string) (*websocket.Conn, error)

// Decoder turns one websocket frame into an InTick, or (nil, nil) for
// frames that carry no book data.
type Decoder func(messageType int, payload []byte) (*orderbook.InTick, error)

// Source pairs one exchange's connector functions with its identity.
type Source struct {
	Exchange orderbook.Exchange
	Dial     Dialer
	Decode   Decoder
}

const (
	backoffInitial = 500 * time.Millisecond
	backoffMax     = 30 * time.Second
)

// Loop runs the two-source fan-in pipeline until ctx is cancelled or a
// source fails fatally.
type Loop struct {
	Symbol      string
	Sources     [2]Source
	Broadcaster *broadcast.Broadcaster
	Logger      zerolog.Logger

	// Reconnect enables exponential-backoff re-dialing (500ms doubling up
	// to 30s) when a read or decode on an established connection fails,
	// instead of treating it as fatal. A dial that fails, the first one or
	// a re-dial, is still fatal. Off by default, matching the baseline
	// fatal-on-error behavior.
	Reconnect bool

	dialer *websocket.Dialer
}

type fanInMsg struct {
	exchange orderbook.Exchange
	tick     *orderbook.InTick
	flush    bool
	err      error
}

// Run dials both sources and processes frames until ctx is done or a
// fatal error occurs. It returns nil on clean context cancellation, or
// the originating error (feed.TransportError / feed.DecodeError) on
// fatal failure.
func (l *Loop) Run(ctx context.Context) error {
	if l.dialer == nil {
		l.dialer = websocket.DefaultDialer
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fanIn := make(chan fanInMsg, 16)
	cache := orderbook.NewExchanges()

	conns := make([]*connHolder, len(l.Sources))
	for i, src := range l.Sources {
		holder := &connHolder{}
		conns[i] = holder
		go l.runSource(runCtx, src, fanIn, holder)
	}

	defer func() {
		cancel()
		for _, h := range conns {
			h.closeCurrent()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg := <-fanIn:
			if msg.err != nil {
				return msg.err
			}

			if msg.flush {
				cache.Update(orderbook.InTick{Exchange: msg.exchange})
				continue
			}

			cache.Update(*msg.tick)
			l.Broadcaster.Publish(cache.Merge())
		}
	}
}

// connHolder lets the run loop close whatever connection a source
// goroutine currently owns, even across reconnects.
type connHolder struct {
	conn *websocket.Conn
}

func (h *connHolder) set(c *websocket.Conn) {
	h.conn = c
}

func (h *connHolder) closeCurrent() {
	feed.Close(h.conn)
}

func (l *Loop) runSource(ctx context.Context, src Source, out chan<- fanInMsg, holder *connHolder) {
	backoff := backoffInitial

	for {
		conn, err := src.Dial(ctx, l.dialer, orderbook.NormalizeSymbol(l.Symbol))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.sendFatal(ctx, out, src.Exchange, &feed.TransportError{Exchange: src.Exchange, Cause: err})
			return
		}
		holder.set(conn)

		// unblock ReadMessage when the loop tears down
		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		fatal := l.readUntilFailure(ctx, src, conn, out)
		feed.Close(conn)

		if ctx.Err() != nil {
			return
		}
		if fatal == nil {
			return
		}
		if !l.Reconnect {
			l.sendFatal(ctx, out, src.Exchange, fatal)
			return
		}

		l.Logger.Warn().Str("exchange", src.Exchange.String()).Err(fatal).Dur("backoff", backoff).Msg("reconnecting after transport failure")
		out <- fanInMsg{exchange: src.Exchange, flush: true}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
}

// readUntilFailure reads frames from conn until a transport or decode
// error occurs, returning that error. A nil return only happens when ctx
// is done.
func (l *Loop) readUntilFailure(ctx context.Context, src Source, conn *websocket.Conn, out chan<- fanInMsg) error {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &feed.TransportError{Exchange: src.Exchange, Cause: err}
		}

		tick, err := src.Decode(messageType, payload)
		if err != nil {
			return &feed.DecodeError{Exchange: src.Exchange, Cause: err}
		}
		if tick == nil {
			continue
		}

		select {
		case out <- fanInMsg{exchange: src.Exchange, tick: tick}:
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Loop) sendFatal(ctx context.Context, out chan<- fanInMsg, exchange orderbook.Exchange, err error) {
	select {
	case out <- fanInMsg{exchange: exchange, err: err}:
	case <-ctx.Done():
		// the run loop already returned via another source's fatal error
	}
}
