package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/microservices/kitchen/service"
	"cafe-orders/internal/repository"
)

type KitchenHandler struct {
	queue service.QueueInterface
}

func NewKitchenHandler(q service.QueueInterface) *KitchenHandler {
	return &KitchenHandler{queue: q}
}

func (h *KitchenHandler) ListTickets(w http.ResponseWriter, _ *http.Request) {
	tickets := h.queue.Tickets()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tickets": tickets, "count": len(tickets)})
}

func (h *KitchenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.Refresh(r.Context()); err != nil {
		httpx.WriteProblem(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	h.ListTickets(w, r)
}

func (h *KitchenHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["order_id"]
	err := h.queue.CompleteOrder(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, repository.ErrInvalidTransition):
		httpx.WriteProblem(w, http.StatusConflict, "invalid_transition", err.Error())
	case repository.IsWriteError(err):
		httpx.WriteProblem(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		httpx.WriteProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
