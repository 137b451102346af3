package handlers

import (
	"cafe-orders/internal/microservices/barista"
	"cafe-orders/internal/microservices/order/service"
)

type Handler struct {
	CheckoutHandler *CheckoutHandler
	CatalogHandler  *CatalogHandler
}

func New(sessions *service.Sessions, status service.StatusServiceInterface, rec barista.Recommender) *Handler {
	return &Handler{
		CheckoutHandler: NewCheckoutHandler(sessions),
		CatalogHandler:  NewCatalogHandler(status, rec),
	}
}
