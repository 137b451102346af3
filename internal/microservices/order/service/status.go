package service

import (
	"context"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/repository"
)

type StatusServiceInterface interface {
	GetOrderStatus(ctx context.Context, id string) (domain.OrderStatusResponse, bool, error)
}

type StatusService struct {
	store repository.Orders
}

func NewStatusService(store repository.Orders) *StatusService {
	return &StatusService{store: store}
}

func (s *StatusService) GetOrderStatus(ctx context.Context, id string) (domain.OrderStatusResponse, bool, error) {
	orders, err := s.store.LoadAll(ctx)
	if err != nil {
		return domain.OrderStatusResponse{}, false, err
	}
	for _, o := range orders {
		if o.ID == id {
			return domain.OrderStatusResponse{
				OrderID:   o.ID,
				Status:    o.Status,
				Type:      o.Type,
				Total:     o.Total,
				Timestamp: o.Timestamp,
			}, true, nil
		}
	}
	return domain.OrderStatusResponse{}, false, nil
}
