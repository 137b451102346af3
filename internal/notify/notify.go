package notify

import (
	"context"
	"errors"
)

// Notifier broadcasts the payload-free "store changed" signal. Every live
// subscriber sees each publish at least once; a subscriber's handler calls never
// overlap. Receivers reload the order store to learn what changed.
//
// unsubscribe returns only after a handler call in progress has finished, so
// it must not be called from inside the handler.
type Notifier interface {
	Publish(ctx context.Context) error
	Subscribe(handler func()) (unsubscribe func(), err error)
	Close() error
}

var ErrClosed = errors.New("notifier closed")
