package products

import (
	"shopadmin_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ProductRoutesManager struct {
	logger         *gecho.Logger
	catalogService *services.CatalogService
	imageBaseURL   string
}

func NewProductRoutesManager(logger *gecho.Logger, catalogService *services.CatalogService, imageBaseURL string) *ProductRoutesManager {
	return &ProductRoutesManager{
		logger:         logger,
		catalogService: catalogService,
		imageBaseURL:   imageBaseURL,
	}
}

func (p *ProductRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", p.ListProducts)
		r.Get("/categories", p.ListFormCategories)

		r.Get("/{id}", p.GetProduct)
		r.Post("/{id}/delete", p.RequestDelete)
		r.Delete("/{id}/delete", p.CancelDelete)
		r.Post("/{id}/delete/confirm", p.ConfirmDelete)
	})
}
