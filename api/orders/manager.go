package orders

import (
	"shopadmin_server/services"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type OrderRoutesManager struct {
	logger       *gecho.Logger
	orderService *services.OrderService
	heartbeat    time.Duration
}

func NewOrderRoutesManager(logger *gecho.Logger, orderService *services.OrderService) *OrderRoutesManager {
	return &OrderRoutesManager{
		logger:       logger,
		orderService: orderService,
		heartbeat:    25 * time.Second,
	}
}

func (o *OrderRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", o.ListOrders)
		r.Get("/events", o.StreamEvents)
		r.Get("/{id}", o.GetOrder)
		r.Post("/{id}/status", o.UpdateOrderStatus)
	})
}
