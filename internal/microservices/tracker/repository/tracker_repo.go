package repository

import (
	"context"
	"database/sql"
	"time"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/tracker/models"
)

type TrackerRepoInterface interface {
	GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]models.StatusChange, error)
}

// TrackerRepo reads the status log written by the per-record order store.
type TrackerRepo struct {
	db *sql.DB
}

func NewTrackerRepo(db *sql.DB) *TrackerRepo { return &TrackerRepo{db: db} }

func (r *TrackerRepo) GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]models.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT status, changed_by, changed_at
FROM order_status_log WHERE order_id=$1
ORDER BY changed_at ASC, id ASC
LIMIT $2 OFFSET $3
`, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.StatusChange, 0)
	for rows.Next() {
		var (
			status, by string
			at         time.Time
		)
		if err := rows.Scan(&status, &by, &at); err != nil {
			return nil, err
		}
		out = append(out, models.StatusChange{OrderID: id, Status: domain.OrderStatus(status), ChangedBy: by, ChangedAt: at})
	}
	return out, rows.Err()
}
