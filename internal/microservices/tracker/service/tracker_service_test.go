package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/microservices/tracker/models"
)

type recordingRepo struct{ limit, offset int }

func (r *recordingRepo) GetOrderTimeline(_ context.Context, _ string, limit, offset int) ([]models.StatusChange, error) {
	r.limit, r.offset = limit, offset
	return nil, nil
}

func TestGetOrderTimelinePaging(t *testing.T) {
	cases := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, defaultLimit, 0},
		{"capped", 1000, 5, maxLimit, 5},
		{"negative offset", 10, -3, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &recordingRepo{}
			_, err := NewTrackerService(repo).GetOrderTimeline(context.Background(), "a", tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, repo.limit)
			assert.Equal(t, tc.wantOffset, repo.offset)
		})
	}
}
