package products

import (
	"net/http"
	"shopadmin_server/handling"
	"shopadmin_server/lib"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

// ListProducts handles GET /products. The catalog is fetched on first use or
// when refresh=true; a failed refetch keeps serving the last collection.
func (p *ProductRoutesManager) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := handling.ParseCatalogQuery(r)
	if err != nil {
		p.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	var loadErr error
	if opts.Refresh || !p.catalogService.Loaded() {
		loadErr = p.catalogService.Load(ctx)
	}
	if loadErr != nil && !p.catalogService.Loaded() {
		handling.HandleError(loadErr, "error.products.failedToFetch", p.logger, w)
		return
	}

	products := p.catalogService.Filter(opts.Search, opts.Category)
	for i := range products {
		products[i] = p.resolveImages(products[i])
	}

	data := map[string]any{
		"products":   products,
		"categories": p.catalogService.Categories(),
		"filters": map[string]string{
			"search":   opts.Search,
			"category": opts.Category,
		},
		"meta": map[string]any{
			"count":     len(products),
			"loaded_at": p.catalogService.LoadedAt(),
			"stale":     loadErr != nil,
		},
	}

	if loadErr != nil {
		gecho.Success(w,
			gecho.WithMessage("warning.products.staleCatalog"),
			gecho.WithData(data),
			gecho.Send(),
		)
		return
	}
	gecho.Success(w,
		gecho.WithData(data),
		gecho.Send(),
	)
}

// GetProduct handles GET /products/{id} from the loaded catalog
func (p *ProductRoutesManager) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r, "id")
	if err != nil {
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.invalidProductId"),
			gecho.Send(),
		)
		return
	}

	product, ok := p.catalogService.Product(id)
	if !ok {
		gecho.NotFound(w,
			gecho.WithMessage("error.products.notFound"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"product": p.resolveImages(product),
		}),
		gecho.Send(),
	)
}

// ListFormCategories handles GET /products/categories for the product form.
// When the backend cannot be reached the fixed fallback list is served.
func (p *ProductRoutesManager) ListFormCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.catalogService.FormCategories(r.Context())
	gecho.Success(w,
		gecho.WithData(map[string]any{
			"categories": categories,
			"fallback":   err != nil,
		}),
		gecho.Send(),
	)
}

func (p *ProductRoutesManager) resolveImages(product structs.Product) structs.Product {
	product.Image = lib.ResolveImageURL(p.imageBaseURL, product.Image)

	if len(product.Images) > 0 {
		images := make([]string, len(product.Images))
		for i, img := range product.Images {
			images[i] = lib.ResolveImageURL(p.imageBaseURL, img)
		}
		product.Images = images
	}

	if len(product.Variants) > 0 {
		variants := make([]structs.Variant, len(product.Variants))
		for i, v := range product.Variants {
			v.Image = lib.ResolveImageURL(p.imageBaseURL, v.Image)
			variants[i] = v
		}
		product.Variants = variants
	}
	return product
}
