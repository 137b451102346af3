package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/microservices/tracker/service"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
}

func NewTrackerHandler(svc service.TrackerServiceInterface) *TrackerHandler {
	return &TrackerHandler{service: svc}
}

func (h *TrackerHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["order_id"]
	limit := atoiDefault(r.URL.Query().Get("limit"), 0)
	offset := atoiDefault(r.URL.Query().Get("offset"), 0)
	events, err := h.service.GetOrderTimeline(r.Context(), id, limit, offset)
	if err != nil {
		httpx.WriteProblem(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if len(events) == 0 && offset == 0 {
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order_id": id, "events": events})
}

// atoiDefault parses s, falling back to d on empty or bad input.
func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
