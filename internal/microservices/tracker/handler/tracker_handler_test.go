package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/tracker/models"
)

type fakeTimeline struct {
	events        []models.StatusChange
	err           error
	limit, offset int
}

func (f *fakeTimeline) GetOrderTimeline(_ context.Context, _ string, limit, offset int) ([]models.StatusChange, error) {
	f.limit, f.offset = limit, offset
	return f.events, f.err
}

func serve(t *testing.T, svc *fakeTimeline, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	Mount(r, NewTrackerHandler(svc))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetTimeline(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &fakeTimeline{events: []models.StatusChange{
		{OrderID: "a", Status: domain.StatusPending, ChangedBy: "cafe", ChangedAt: at},
		{OrderID: "a", Status: domain.StatusCompleted, ChangedBy: "cafe", ChangedAt: at.Add(time.Minute)},
	}}

	rec := serve(t, svc, "/api/v1/orders/a/timeline?limit=10&offset=bad")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.limit)
	assert.Equal(t, 0, svc.offset)
	var body struct {
		OrderID string                `json:"order_id"`
		Events  []models.StatusChange `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a", body.OrderID)
	require.Len(t, body.Events, 2)
	assert.Equal(t, domain.StatusCompleted, body.Events[1].Status)
}

func TestGetTimelineErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, &fakeTimeline{}, "/api/v1/orders/x/timeline").Code)
	assert.Equal(t, http.StatusInternalServerError,
		serve(t, &fakeTimeline{err: errors.New("down")}, "/api/v1/orders/x/timeline").Code)
}
