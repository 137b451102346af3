package models

import (
	"time"

	"cafe-orders/internal/domain"
)

// StatusChange is one row of an order's status history.
type StatusChange struct {
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	ChangedBy string             `json:"changed_by"`
	ChangedAt time.Time          `json:"changed_at"`
}
