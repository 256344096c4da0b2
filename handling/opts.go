package handling

import (
	"fmt"
	"net/http"
	"shopadmin_server/services"
	"shopadmin_server/structs"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type CatalogQuery struct {
	Search   string
	Category string
	Refresh  bool
}

// ParseCatalogQuery reads search, category and refresh. A missing category
// means every category.
func ParseCatalogQuery(r *http.Request) (*CatalogQuery, error) {
	query := r.URL.Query()

	opts := &CatalogQuery{
		Search:   query.Get("search"),
		Category: strings.TrimSpace(query.Get("category")),
	}
	if opts.Category == "" {
		opts.Category = structs.AllCategories
	}

	if refresh := query.Get("refresh"); refresh != "" {
		val, err := strconv.ParseBool(refresh)
		if err != nil {
			return nil, fmt.Errorf("refresh: %w", err)
		}
		opts.Refresh = val
	}

	return opts, nil
}

type OrderQuery struct {
	Search string
	Status string
}

// ParseOrderQuery reads search and status; status is "all" or one of the
// order statuses
func ParseOrderQuery(r *http.Request) (*OrderQuery, error) {
	query := r.URL.Query()

	opts := &OrderQuery{
		Search: query.Get("search"),
		Status: strings.ToLower(strings.TrimSpace(query.Get("status"))),
	}
	if opts.Status == "" {
		opts.Status = services.AllStatuses
	}
	if opts.Status != services.AllStatuses && !slices.Contains(structs.OrderStatuses, structs.OrderStatus(opts.Status)) {
		return nil, fmt.Errorf("unknown status %q", opts.Status)
	}

	return opts, nil
}

// ParseID reads a positive integer URL parameter
func ParseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", param, raw)
	}
	return id, nil
}

// ParseImageSlot maps the upload route's slot segment, and the variant index
// when present, to a draft image slot
func ParseImageSlot(slot, index string) (services.ImageSlot, error) {
	switch services.SlotKind(slot) {
	case services.SlotPrimary, services.SlotGallery:
		if index != "" {
			return services.ImageSlot{}, fmt.Errorf("slot %s takes no index", slot)
		}
		return services.ImageSlot{Kind: services.SlotKind(slot)}, nil
	case services.SlotVariant:
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 {
			return services.ImageSlot{}, fmt.Errorf("invalid variant index %q", index)
		}
		return services.ImageSlot{Kind: services.SlotVariant, Index: i}, nil
	default:
		return services.ImageSlot{}, fmt.Errorf("unknown image slot %q", slot)
	}
}
