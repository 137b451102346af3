package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/order/service"
	"cafe-orders/internal/repository"
)

const SessionHeader = "X-Session-ID"

type CheckoutHandler struct {
	sessions *service.Sessions
}

func NewCheckoutHandler(sessions *service.Sessions) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions}
}

// workflow resolves the caller's session or writes the problem response.
func (h *CheckoutHandler) workflow(w http.ResponseWriter, r *http.Request) (*service.Workflow, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		httpx.WriteProblem(w, http.StatusBadRequest, "session_required", SessionHeader+" header is required")
		return nil, false
	}
	wf, ok := h.sessions.Get(id)
	if !ok {
		httpx.WriteProblem(w, http.StatusNotFound, "session_not_found", "unknown session")
		return nil, false
	}
	return wf, true
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	id, wf := h.sessions.New()
	w.Header().Set(SessionHeader, id)
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"session_id": id, "checkout": wf.Snapshot()})
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wf.Snapshot())
}

func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	var req domain.AddCartItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	item, err := wf.AddItem(req.MenuItemID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.RemoveItem(mux.Vars(r)["cart_id"]); err != nil {
		writeWorkflowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.ClearCart(); err != nil {
		writeWorkflowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) SetForm(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	var req domain.CheckoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := wf.SetForm(formOf(req)); err != nil {
		writeWorkflowError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wf.Snapshot())
}

// Checkout blocks through the confirmation delay and answers with the
// confirmed order. Session reads stay available meanwhile.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	var req domain.CheckoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	sub, err := wf.Begin(formOf(req))
	if err != nil {
		if service.IsValidationError(err) {
			metrics.RecordCheckout(metrics.OutcomeInvalid)
		}
		writeWorkflowError(w, err)
		return
	}
	if _, err := wf.Complete(context.WithoutCancel(r.Context()), sub); err != nil {
		metrics.RecordCheckout(metrics.OutcomeFailed)
		writeWorkflowError(w, err)
		return
	}
	metrics.RecordCheckout(metrics.OutcomePlaced)
	httpx.WriteJSON(w, http.StatusCreated, wf.Snapshot())
}

func (h *CheckoutHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.Dismiss(); err != nil {
		writeWorkflowError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wf.Snapshot())
}

func formOf(req domain.CheckoutRequest) service.Form {
	return service.Form{CustomerName: req.CustomerName, Type: req.OrderType, Address: req.Address}
}

func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidationError(err):
		httpx.WriteProblem(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrSubmissionInFlight), errors.Is(err, service.ErrAwaitingDismiss):
		httpx.WriteProblem(w, http.StatusConflict, "checkout_conflict", err.Error())
	case errors.Is(err, service.ErrUnknownMenuItem):
		httpx.WriteProblem(w, http.StatusBadRequest, "unknown_menu_item", err.Error())
	case errors.Is(err, service.ErrUnknownCartItem):
		httpx.WriteProblem(w, http.StatusNotFound, "cart_item_not_found", err.Error())
	case repository.IsWriteError(err):
		httpx.WriteProblem(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		httpx.WriteProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
