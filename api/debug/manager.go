package debug

import (
	"shopadmin_server/config"
	"shopadmin_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type DebugRoutesManager struct {
	logger       *gecho.Logger
	orderService *services.OrderService
	draftService *services.DraftService
}

func NewDebugRoutesManager(logger *gecho.Logger, orderService *services.OrderService, draftService *services.DraftService) *DebugRoutesManager {
	return &DebugRoutesManager{
		logger:       logger,
		orderService: orderService,
		draftService: draftService,
	}
}

func (drm *DebugRoutesManager) RegisterRoutes(r chi.Router) {
	// Debug routes - only in non-production environments
	if !config.IsProduction() {
		r.Route("/debug", func(r chi.Router) {
			r.Post("/orders/refresh", drm.RefreshOrders)
			r.Post("/drafts/sweep", drm.SweepDrafts)
		})
	}
}
