package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is one encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: it queues the frame or reports ErrBackpressure / ErrConnClosed.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
