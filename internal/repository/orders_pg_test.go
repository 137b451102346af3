package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/domain"
)

func newRecordStore(t *testing.T) (*RecordStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRecordStore(db, "test"), mock
}

var orderColumns = []string{"id", "customer_name", "order_type", "address", "status", "created_at", "total", "items"}

func TestRecordStore_LoadAll(t *testing.T) {
	s, mock := newRecordStore(t)

	mock.ExpectQuery(`SELECT id, customer_name .* FROM orders\s+ORDER BY seq ASC`).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow("a", "Ana", "pickup", "", "pending", int64(100), 3.5,
				`[{"id":"1","name":"Gold Leaf Espresso","price":3.5,"category":"coffee","cartId":"c1"}]`).
			AddRow("bad", "Bo", "pickup", "", "pending", int64(150), 1.0, `{oops`).
			AddRow("b", "Cy", "delivery", "1 Bean St", "completed", int64(200), 13.25, `[]`))

	orders, err := s.LoadAll(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2, "rows with unreadable items are skipped")
	assert.Equal(t, "a", orders[0].ID)
	assert.Equal(t, "c1", orders[0].Items[0].CartID)
	assert.Equal(t, domain.OrderTypeDelivery, orders[1].Type)
	assert.Equal(t, "1 Bean St", orders[1].Address)
	assert.Equal(t, domain.StatusCompleted, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_Append(t *testing.T) {
	s, mock := newRecordStore(t)
	o := sampleOrder("a", 100)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("a", "Ana", "pickup", nil, "pending", int64(100), 3.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO order_status_log`).
		WithArgs("a", "pending", "test").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Append(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_AppendInsertFailureRollsBack(t *testing.T) {
	s, mock := newRecordStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := s.Append(context.Background(), sampleOrder("a", 100))

	assert.True(t, IsWriteError(err))
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_UpdateStatus(t *testing.T) {
	t.Run("pending to completed", func(t *testing.T) {
		s, mock := newRecordStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders WHERE id=\$1 FOR UPDATE`).
			WithArgs("a").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
		mock.ExpectExec(`UPDATE orders SET status=\$2 WHERE id=\$1`).
			WithArgs("a", "completed").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_status_log`).
			WithArgs("a", "completed", "test").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, s.UpdateStatus(context.Background(), "a", domain.StatusCompleted))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s, mock := newRecordStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		require.NoError(t, s.UpdateStatus(context.Background(), "missing", domain.StatusCompleted))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed is a no-op", func(t *testing.T) {
		s, mock := newRecordStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
		mock.ExpectRollback()

		require.NoError(t, s.UpdateStatus(context.Background(), "a", domain.StatusCompleted))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completed back to pending is rejected", func(t *testing.T) {
		s, mock := newRecordStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT status FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
		mock.ExpectRollback()

		err := s.UpdateStatus(context.Background(), "a", domain.StatusPending)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.False(t, IsWriteError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
