package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/common/logger"
)

func Router(h *KitchenHandler, lg *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(httpx.Logging(lg), metrics.Middleware)

	api := r.PathPrefix("/api/v1/kitchen").Subrouter()
	api.HandleFunc("/tickets", h.ListTickets).Methods(http.MethodGet)
	api.HandleFunc("/tickets/refresh", h.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/tickets/{order_id}/complete", h.Complete).Methods(http.MethodPost)
	api.HandleFunc("/ws", h.Stream(lg)).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}
