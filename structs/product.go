package structs

// Product is a catalog entry as the backend serves it.
// Price, MRP, Stock and ShippingRate are the display values; when Variants is
// non-empty they mirror the default variant.
type Product struct {
	ID           int64     `json:"id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	MRP          *float64  `json:"mrp,omitempty"` // struck-through reference price
	Price        float64   `json:"price"`
	Stock        int       `json:"stock"`
	ShippingRate float64   `json:"shipping_rate"`
	Image        string    `json:"image"`
	Images       []string  `json:"images,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
}

// Variant is a purchasable sub-configuration of a product (a size, a weight).
type Variant struct {
	ID           int64    `json:"id,omitempty"`
	VariantName  string   `json:"variant_name"`
	MRP          *float64 `json:"mrp,omitempty"`
	Price        float64  `json:"price"`
	Stock        int      `json:"stock"`
	ShippingRate float64  `json:"shipping_rate"`
	Image        string   `json:"image,omitempty"`
	IsDefault    bool     `json:"is_default"`
}

// UncategorizedLabel buckets products without a category.
const UncategorizedLabel = "Uncategorized"

// AllCategories is the sentinel category filter that matches everything.
const AllCategories = "All"

// CategoryLabel returns the category used for grouping and filtering.
func (p Product) CategoryLabel() string {
	if p.Category == "" {
		return UncategorizedLabel
	}
	return p.Category
}
