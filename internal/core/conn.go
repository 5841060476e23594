package core

import "errors"

var (
	// ErrBackpressure means the receiver's send buffer is full. The frame is
	// dropped; the relay never retries.
	ErrBackpressure = errors.New("backpressure")
	// ErrClosed means the connection is already torn down.
	ErrClosed = errors.New("connection closed")
)

// SignalConnection abstracts the per-participant messaging transport.
// Owned by the adapter; the adapter must close it when its pumps exit.
type SignalConnection interface {
	// TrySend queues a frame without blocking. Best-effort: a full buffer or
	// closed connection returns an error and the frame is gone.
	TrySend(data []byte) error
	// Close tears the connection down, surfacing code/reason to the peer
	// where the transport supports it.
	Close(code int, reason string)
}
