package service

import (
	"context"

	"cafe-orders/internal/microservices/tracker/models"
	"cafe-orders/internal/microservices/tracker/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type TrackerServiceInterface interface {
	GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]models.StatusChange, error)
}

type TrackerService struct {
	repo repository.TrackerRepoInterface
}

func NewTrackerService(repo repository.TrackerRepoInterface) *TrackerService {
	return &TrackerService{repo: repo}
}

func (s *TrackerService) GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]models.StatusChange, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetOrderTimeline(ctx, id, limit, offset)
}
