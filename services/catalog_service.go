package services

import (
	"context"
	"fmt"
	"shopadmin_server/lib"
	"shopadmin_server/structs"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

// FallbackCategories is offered by the product form when the catalog cannot
// be fetched
var FallbackCategories = []string{
	"Electronics",
	"Clothing",
	"Books",
	"Home & Kitchen",
	"Sports",
	"Toys",
	"Beauty",
	"Other",
}

// CatalogService holds the loaded product collection. Filtering happens in
// memory; the backend is only asked for the full list.
type CatalogService struct {
	logger  *gecho.Logger
	backend ProductBackend

	mu            sync.RWMutex
	products      []structs.Product
	loaded        bool
	loadedAt      time.Time
	pendingDelete int64
}

func NewCatalogService(logger *gecho.Logger, backend ProductBackend) *CatalogService {
	return &CatalogService{logger: logger, backend: backend}
}

// Load replaces the collection with a fresh fetch. On failure the previous
// collection stays in place.
func (cs *CatalogService) Load(ctx context.Context) error {
	products, err := cs.backend.ListProducts(ctx)
	if err != nil {
		cs.logger.Error("Failed to fetch products", gecho.Field("error", err))
		return fmt.Errorf("load products: %w", err)
	}

	cs.mu.Lock()
	cs.products = products
	cs.loaded = true
	cs.loadedAt = time.Now()
	cs.mu.Unlock()

	cs.logger.Debug("Catalog loaded", gecho.Field("count", len(products)))
	return nil
}

// Loaded reports whether any load has succeeded yet
func (cs *CatalogService) Loaded() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.loaded
}

func (cs *CatalogService) LoadedAt() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.loadedAt
}

// Filter returns the products matching both the search term and the category.
// An empty search matches everything, as does the "All" category.
func (cs *CatalogService) Filter(search, category string) []structs.Product {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	term := strings.ToLower(search)
	out := make([]structs.Product, 0, len(cs.products))
	for _, p := range cs.products {
		if matchesProduct(p, term, category) {
			out = append(out, p)
		}
	}
	return out
}

func matchesProduct(p structs.Product, term, category string) bool {
	matchesSearch := strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Category), term) ||
		strings.Contains(strings.ToLower(p.Description), term)

	matchesCategory := category == "" || category == structs.AllCategories || p.CategoryLabel() == category

	return matchesSearch && matchesCategory
}

// Categories lists "All" followed by the categories of the loaded collection
// in first-seen order
func (cs *CatalogService) Categories() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	out := []string{structs.AllCategories}
	for _, p := range cs.products {
		if label := p.CategoryLabel(); !slices.Contains(out, label) {
			out = append(out, label)
		}
	}
	return out
}

// FormCategories is the sorted category list the product form offers. It
// always fetches; when that fails the fixed fallback list is returned along
// with the error.
func (cs *CatalogService) FormCategories(ctx context.Context) ([]string, error) {
	products, err := cs.backend.ListProducts(ctx)
	if err != nil {
		cs.logger.Warn("Failed to fetch categories, using fallback", gecho.Field("error", err))
		return slices.Clone(FallbackCategories), fmt.Errorf("load categories: %w", err)
	}

	var out []string
	for _, p := range products {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Product returns one product of the loaded collection
func (cs *CatalogService) Product(id int64) (structs.Product, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	idx := cs.indexOf(id)
	if idx < 0 {
		return structs.Product{}, false
	}
	return cs.products[idx], true
}

// RequestDelete arms the delete confirmation for one product, replacing any
// earlier request
func (cs *CatalogService) RequestDelete(id int64) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.indexOf(id) < 0 {
		return fmt.Errorf("product %d: %w", id, lib.ErrNotFound)
	}
	cs.pendingDelete = id
	return nil
}

func (cs *CatalogService) CancelDelete() {
	cs.mu.Lock()
	cs.pendingDelete = 0
	cs.mu.Unlock()
}

// PendingDelete returns the product awaiting confirmation, if any
func (cs *CatalogService) PendingDelete() (int64, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.pendingDelete, cs.pendingDelete != 0
}

// ConfirmDelete sends the delete for the armed product. On success the
// product leaves the in-memory collection without a refetch; on failure the
// confirmation stays armed so the operator can retry.
func (cs *CatalogService) ConfirmDelete(ctx context.Context, id int64) error {
	if pending, ok := cs.PendingDelete(); !ok || pending != id {
		return lib.ErrDeleteNotArmed
	}

	if err := cs.backend.DeleteProduct(ctx, id); err != nil {
		cs.logger.Error("Failed to delete product", gecho.Field("id", id), gecho.Field("error", err))
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	cs.mu.Lock()
	if idx := cs.indexOf(id); idx >= 0 {
		cs.products = slices.Delete(slices.Clone(cs.products), idx, idx+1)
	}
	if cs.pendingDelete == id {
		cs.pendingDelete = 0
	}
	cs.mu.Unlock()

	cs.logger.Info("Product deleted", gecho.Field("id", id))
	return nil
}

// Invalidate marks the collection stale so the next listing reloads it. The
// current products stay visible until then.
func (cs *CatalogService) Invalidate() {
	cs.mu.Lock()
	cs.loaded = false
	cs.mu.Unlock()
}

// indexOf expects cs.mu to be held
func (cs *CatalogService) indexOf(id int64) int {
	return slices.IndexFunc(cs.products, func(p structs.Product) bool { return p.ID == id })
}
