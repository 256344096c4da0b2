package services

import (
	"shopadmin_server/clients"
	"shopadmin_server/live"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	HealthService  *HealthService
	CatalogService *CatalogService
	OrderService   *OrderService
	DraftService   *DraftService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, backend *clients.Backend, channel live.Channel) *ServiceManager {
	catalogService := NewCatalogService(logger, backend)
	orderService := NewOrderService(logger, backend, channel)
	draftService := NewDraftService(logger, cfg.Drafts, backend, catalogService)
	healthService := NewHealthService(logger, backend, catalogService, orderService)

	return &ServiceManager{
		HealthService:  healthService,
		CatalogService: catalogService,
		OrderService:   orderService,
		DraftService:   draftService,
	}
}
