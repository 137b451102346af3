package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Mount adds the timeline route to an existing router.
func Mount(r *mux.Router, h *TrackerHandler) {
	r.HandleFunc("/api/v1/orders/{order_id}/timeline", h.GetTimeline).Methods(http.MethodGet)
}
