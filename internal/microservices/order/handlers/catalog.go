package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/barista"
	"cafe-orders/internal/microservices/order/service"
)

type CatalogHandler struct {
	status  service.StatusServiceInterface
	barista barista.Recommender
}

func NewCatalogHandler(status service.StatusServiceInterface, rec barista.Recommender) *CatalogHandler {
	return &CatalogHandler{status: status, barista: rec}
}

func (h *CatalogHandler) GetMenu(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": domain.Menu()})
}

func (h *CatalogHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["order_id"]
	v, ok, err := h.status.GetOrderStatus(r.Context(), id)
	if err != nil {
		httpx.WriteProblem(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
		return
	}
	if !ok {
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *CatalogHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req domain.RecommendationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpx.WriteProblem(w, http.StatusBadRequest, "validation_error", "message is required")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, domain.RecommendationResponse{Text: h.barista.Recommend(r.Context(), req.Message)})
}
