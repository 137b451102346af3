package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/v1/orders/{order_id}/status", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/orders/{order_id}/status", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders/abc/status", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/orders/{order_id}/status", "404"))

	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(ordersSubmitted.WithLabelValues(OutcomePlaced))
	RecordCheckout(OutcomePlaced)
	assert.Equal(t, before+1, testutil.ToFloat64(ordersSubmitted.WithLabelValues(OutcomePlaced)))

	SetActiveTickets(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(activeTickets))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordSignalPublished()
	rec := httptest.NewRecorder()

	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cafe_notifier_signals_total")
}
