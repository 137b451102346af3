package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/domain"
)

// KeyedStore persists the whole order collection as one JSON array under a
// single key. Append and UpdateStatus read the full array, change it in memory
// and write it back, with no locking across writers: two writers that both read
// before either writes lose the first write (last writer wins).
type KeyedStore struct {
	medium Medium
	key    string
	lg     *logger.Logger
}

func NewKeyedStore(medium Medium, key string) *KeyedStore {
	return &KeyedStore{medium: medium, key: key, lg: logger.New("order-store")}
}

func (s *KeyedStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	raw, err := s.medium.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return s.decode(raw), nil
}

func (s *KeyedStore) Append(ctx context.Context, order domain.Order) error {
	orders, err := s.LoadAll(ctx)
	if err != nil {
		return &WriteError{Op: "append", Err: err}
	}
	orders = append(orders, order)
	return s.write(ctx, "append", orders)
}

func (s *KeyedStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	orders, err := s.LoadAll(ctx)
	if err != nil {
		return &WriteError{Op: "update_status", Err: err}
	}
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if !domain.CanTransition(orders[i].Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, orders[i].Status, status)
		}
		orders[i].Status = status
	}
	return s.write(ctx, "update_status", orders)
}

func (s *KeyedStore) write(ctx context.Context, op string, orders []domain.Order) error {
	body, err := json.Marshal(orders)
	if err != nil {
		return &WriteError{Op: op, Err: err}
	}
	if err := s.medium.Put(ctx, s.key, body); err != nil {
		return &WriteError{Op: op, Err: err}
	}
	return nil
}

// decode treats absent, empty and malformed records as an empty collection.
func (s *KeyedStore) decode(raw []byte) []domain.Order {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []domain.Order{}
	}
	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		s.lg.Warn("store_record_unparseable", err, map[string]any{"key": s.key, "bytes": len(raw)})
		return []domain.Order{}
	}
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
