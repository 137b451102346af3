package domain

type AddCartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
}

type CheckoutRequest struct {
	CustomerName string    `json:"customer_name"`
	OrderType    OrderType `json:"order_type"`
	Address      string    `json:"address,omitempty"`
}

type OrderStatusResponse struct {
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Type      OrderType   `json:"type"`
	Total     float64     `json:"total"`
	Timestamp int64       `json:"timestamp"`
}

type RecommendationRequest struct {
	Message string `json:"message"`
}

type RecommendationResponse struct {
	Text string `json:"text"`
}
