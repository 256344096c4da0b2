package api

import (
	"shopadmin_server/api/debug"
	"shopadmin_server/api/drafts"
	"shopadmin_server/api/health"
	"shopadmin_server/api/orders"
	"shopadmin_server/api/products"
	"shopadmin_server/services"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	productRoutes *products.ProductRoutesManager
	healthRoutes  *health.HealthRoutesManager
	draftRoutes   *drafts.DraftRoutesManager
	orderRoutes   *orders.OrderRoutesManager
	debugRoutes   *debug.DebugRoutesManager
}

func NewRouterManager(logger *gecho.Logger, cfg *structs.Config, sm *services.ServiceManager, imageBaseURL string) *routerManager {
	return &routerManager{
		productRoutes: products.NewProductRoutesManager(logger, sm.CatalogService, imageBaseURL),
		healthRoutes:  health.NewHealthRoutesManager(sm.HealthService),
		draftRoutes:   drafts.NewDraftRoutesManager(logger, sm.DraftService, imageBaseURL, cfg.Drafts.MaxUploadBytes),
		orderRoutes:   orders.NewOrderRoutesManager(logger, sm.OrderService),
		debugRoutes:   debug.NewDebugRoutesManager(logger, sm.OrderService, sm.DraftService),
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.productRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
	rm.draftRoutes.RegisterRoutes(r)
	rm.orderRoutes.RegisterRoutes(r)
	rm.debugRoutes.RegisterRoutes(r)
}
