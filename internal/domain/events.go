package domain

// StoreChanged is the only signal the change notifier carries. Receivers must
// reload the order store to learn what changed.
const StoreChanged = "store.changed"

// Sources stamped on published signals; informational only.
const (
	SourceServe      = "serve"
	SourceCheckout   = "order-service"
	SourceKitchen    = "kitchen-display"
	SourceSimulate   = "simulate"
	SourceSubscriber = "notification-subscriber"
)
