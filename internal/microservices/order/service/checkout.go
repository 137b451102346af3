package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrAddressRequired      = errors.New("delivery address is required")
	ErrInvalidOrderType     = errors.New("invalid order type")
	ErrSubmissionInFlight   = errors.New("a submission is already in progress")
	ErrAwaitingDismiss      = errors.New("order confirmed, dismiss before starting a new one")
	ErrUnknownMenuItem      = errors.New("unknown menu item")
	ErrUnknownCartItem      = errors.New("cart item not found")
)

// IsValidationError reports whether err comes from input checks and the
// submission never reached the store.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrAddressRequired) || errors.Is(err, ErrInvalidOrderType)
}

type Form struct {
	CustomerName string           `json:"customer_name"`
	Type         domain.OrderType `json:"order_type"`
	Address      string           `json:"address,omitempty"`
}

// Snapshot is the read model of one checkout.
type Snapshot struct {
	State         State             `json:"state"`
	Cart          []domain.CartItem `json:"cart"`
	Form          Form              `json:"form"`
	Subtotal      float64           `json:"subtotal"`
	DeliveryFee   float64           `json:"delivery_fee"`
	Total         float64           `json:"total"`
	Order         *domain.Order     `json:"order,omitempty"`
	EstimatedWait string            `json:"estimated_wait,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Submission is a validated checkout waiting for its confirmation step.
type Submission struct {
	form  Form
	items []domain.CartItem
	total float64
}

// Workflow drives one customer's cart through checkout. Operations on a single
// Workflow are serialized; the confirmation delay runs outside the lock so
// Snapshot stays readable while submitting.
type Workflow struct {
	store        repository.Orders
	notifier     notify.Notifier
	pricing      domain.Pricing
	confirmDelay time.Duration
	lg           *logger.Logger

	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	state     State
	cart      []domain.CartItem
	form      Form
	confirmed *domain.Order
	lastErr   error
}

func NewWorkflow(store repository.Orders, notifier notify.Notifier, pricing domain.Pricing, confirmDelay time.Duration) *Workflow {
	return &Workflow{
		store:        store,
		notifier:     notifier,
		pricing:      pricing,
		confirmDelay: confirmDelay,
		lg:           logger.New("order-service"),
		now:          time.Now,
		newID:        uuid.NewString,
		state:        StateEditing,
		form:         Form{Type: domain.OrderTypePickup},
	}
}

// editable must be called with mu held.
func (w *Workflow) editable() error {
	switch w.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateSuccess:
		return ErrAwaitingDismiss
	}
	return nil
}

func (w *Workflow) AddItem(menuItemID string) (domain.CartItem, error) {
	item, ok := domain.FindMenuItem(menuItemID)
	if !ok {
		return domain.CartItem{}, ErrUnknownMenuItem
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return domain.CartItem{}, err
	}
	ci := domain.CartItem{MenuItem: item, CartID: w.newID()}
	w.cart = append(w.cart, ci)
	return ci, nil
}

func (w *Workflow) RemoveItem(cartID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	for i, it := range w.cart {
		if it.CartID == cartID {
			w.cart = append(w.cart[:i:i], w.cart[i+1:]...)
			return nil
		}
	}
	return ErrUnknownCartItem
}

func (w *Workflow) ClearCart() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.cart = nil
	return nil
}

func (w *Workflow) SetForm(form Form) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	w.form = form
	return nil
}

// Begin validates form against the current cart and, if it passes, moves the
// workflow to submitting. The form is kept even when validation fails.
func (w *Workflow) Begin(form Form) (*Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return nil, err
	}
	w.form = form

	if err := validate(w.cart, form); err != nil {
		w.lastErr = err
		return nil, err
	}

	items := make([]domain.CartItem, len(w.cart))
	copy(items, w.cart)
	w.state = StateSubmitting
	w.lastErr = nil
	return &Submission{
		form:  normalize(form),
		items: items,
		total: w.pricing.Total(items, form.Type),
	}, nil
}

// Complete waits out the confirmation delay, then appends the order and
// signals the change. The delay ignores ctx. On a store error the workflow
// returns to editing with cart and form intact.
func (w *Workflow) Complete(ctx context.Context, sub *Submission) (domain.Order, error) {
	time.Sleep(w.confirmDelay)

	order := domain.Order{
		ID:           w.newID(),
		CustomerName: sub.form.CustomerName,
		Items:        sub.items,
		Type:         sub.form.Type,
		Address:      sub.form.Address,
		Status:       domain.StatusPending,
		Timestamp:    w.now().UnixMilli(),
		Total:        sub.total,
	}

	if err := w.store.Append(ctx, order); err != nil {
		w.lg.Error("order_append_failed", err, map[string]any{"order_id": order.ID})
		w.mu.Lock()
		w.state = StateEditing
		w.lastErr = err
		w.mu.Unlock()
		return domain.Order{}, err
	}

	if err := w.notifier.Publish(ctx); err != nil {
		// the order is durable; readers catch up on their next signal
		w.lg.Warn("store_changed_publish_failed", err, map[string]any{"order_id": order.ID})
	} else {
		metrics.RecordSignalPublished()
	}

	w.lg.Info("order_placed", map[string]any{
		"order_id": order.ID, "type": order.Type, "items": len(order.Items), "total": order.Total,
	})

	w.mu.Lock()
	w.state = StateSuccess
	w.confirmed = &order
	w.mu.Unlock()
	return order, nil
}

// Submit runs Begin and Complete back to back.
func (w *Workflow) Submit(ctx context.Context, form Form) (domain.Order, error) {
	sub, err := w.Begin(form)
	if err != nil {
		return domain.Order{}, err
	}
	return w.Complete(ctx, sub)
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Dismiss leaves the success state, clearing the cart and resetting the form.
func (w *Workflow) Dismiss() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateSuccess:
		w.cart = nil
		w.form = Form{Type: domain.OrderTypePickup}
		w.confirmed = nil
		w.lastErr = nil
		w.state = StateEditing
	}
	return nil
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	cart := make([]domain.CartItem, len(w.cart))
	copy(cart, w.cart)
	s := Snapshot{
		State:       w.state,
		Cart:        cart,
		Form:        w.form,
		Subtotal:    w.pricing.Subtotal(cart),
		DeliveryFee: w.pricing.Fee(w.form.Type),
		Total:       w.pricing.Total(cart, w.form.Type),
	}
	if w.confirmed != nil {
		o := *w.confirmed
		s.Order = &o
		s.EstimatedWait = domain.EstimatedWait(o.Type)
	}
	if w.lastErr != nil {
		s.Error = w.lastErr.Error()
	}
	return s
}

func validate(cart []domain.CartItem, form Form) error {
	if len(cart) == 0 {
		return ErrEmptyCart
	}
	if strings.TrimSpace(form.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if !form.Type.Valid() {
		return ErrInvalidOrderType
	}
	if form.Type == domain.OrderTypeDelivery && strings.TrimSpace(form.Address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// normalize trims the form and drops the address of pickup orders.
func normalize(form Form) Form {
	form.CustomerName = strings.TrimSpace(form.CustomerName)
	form.Address = strings.TrimSpace(form.Address)
	if form.Type != domain.OrderTypeDelivery {
		form.Address = ""
	}
	return form
}
