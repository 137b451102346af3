package domain

type Category string

const (
	CategoryCoffee    Category = "coffee"
	CategoryTea       Category = "tea"
	CategoryPastry    Category = "pastry"
	CategorySpecialty Category = "specialty"
)

type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	return t == OrderTypePickup || t == OrderTypeDelivery
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
)

// CanTransition reports whether an order in status from may be moved to status to.
// Completing twice is allowed as a no-op; nothing ever goes back to pending.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusPending || to == StatusCompleted
	case StatusCompleted:
		return to == StatusCompleted
	default:
		return false
	}
}

type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
}

// CartItem is one addition of a menu item to a cart. CartID differs per addition,
// so the same menu item may appear several times.
type CartItem struct {
	MenuItem
	CartID string `json:"cartId"`
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Items        []CartItem  `json:"items"`
	Type         OrderType   `json:"type"`
	Address      string      `json:"address,omitempty"`
	Status       OrderStatus `json:"status"`
	Timestamp    int64       `json:"timestamp"` // unix millis
	Total        float64     `json:"total"`
}

func (o Order) IsPending() bool { return o.Status == StatusPending }
