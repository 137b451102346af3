package tracker

import (
	"database/sql"

	"github.com/gorilla/mux"

	"cafe-orders/internal/microservices/tracker/handler"
	"cafe-orders/internal/microservices/tracker/repository"
	"cafe-orders/internal/microservices/tracker/service"
)

// Mount serves order timelines from db's status log on r.
func Mount(r *mux.Router, db *sql.DB) {
	svc := service.NewTrackerService(repository.NewTrackerRepo(db))
	handler.Mount(r, handler.NewTrackerHandler(svc))
}
