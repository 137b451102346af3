package repository

import (
	"context"
	"errors"
	"fmt"

	"cafe-orders/internal/domain"
)

// Orders is the order store shared by checkout and the kitchen.
type Orders interface {
	// LoadAll returns every persisted order in storage order. Missing or
	// unparseable data yields an empty slice and a nil error; an error means
	// the underlying medium could not be read at all.
	LoadAll(ctx context.Context) ([]domain.Order, error)
	Append(ctx context.Context, order domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

var ErrInvalidTransition = errors.New("invalid order status transition")

// WriteError is returned when the medium refused a write. The caller's state
// is untouched and the operation may be retried.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("order store %s: %v", e.Op, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
