package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/common/logger"
)

func Router(h *Handler, lg *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(httpx.Logging(lg), metrics.Middleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/menu", h.CatalogHandler.GetMenu).Methods(http.MethodGet)
	api.HandleFunc("/barista", h.CatalogHandler.Recommend).Methods(http.MethodPost)
	api.HandleFunc("/orders/{order_id}/status", h.CatalogHandler.GetStatus).Methods(http.MethodGet)

	api.HandleFunc("/sessions", h.CheckoutHandler.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/session", h.CheckoutHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/cart/items", h.CheckoutHandler.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/session/cart/items/{cart_id}", h.CheckoutHandler.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/session/cart", h.CheckoutHandler.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/session/form", h.CheckoutHandler.SetForm).Methods(http.MethodPut)
	api.HandleFunc("/session/checkout", h.CheckoutHandler.Checkout).Methods(http.MethodPost)
	api.HandleFunc("/session/dismiss", h.CheckoutHandler.Dismiss).Methods(http.MethodPost)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}
