// Package feed holds the per-exchange websocket connectors. Each exchange
// subpackage exports a Dial/Decode pair rather than implementing a shared
// interface: the two exchanges speak different enough protocols that an
// interface would just be a thin wrapper around two functions anyway.
package feed

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/keyrock-quant/obagg/internal/orderbook"
)

// DecodeError wraps a malformed-payload failure with the exchange that
// produced it, so the aggregator loop can log and tag the fatal error
// without the caller needing to inspect the payload itself.
type DecodeError struct {
	Exchange orderbook.Exchange
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("feed: %s: decode: %v", e.Exchange, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// TransportError wraps a dial or read failure on the underlying websocket
// connection.
type TransportError struct {
	Exchange orderbook.Exchange
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("feed: %s: transport: %v", e.Exchange, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Close sends a websocket close frame, then drops the connection without
// waiting for the peer's close reply. Errors are swallowed, a close is best-effort
// regardless of how the connection is being torn down.
func Close(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}
