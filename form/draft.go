// Package form holds the editable draft of a product and the rules that keep
// its pricing consistent. Every edit goes through Apply, a pure transition
// over a closed set of actions, and a finished draft is turned into the
// backend's multipart submission by Encode.
package form

import (
	"shopadmin_server/structs"
	"strconv"
	"strings"
)

type Field string

const (
	FieldName         Field = "name"
	FieldDescription  Field = "description"
	FieldCategory     Field = "category"
	FieldBrand        Field = "brand"
	FieldMRP          Field = "mrp"
	FieldPrice        Field = "price"
	FieldStock        Field = "stock"
	FieldShippingRate Field = "shipping_rate"
	FieldVariantName  Field = "variant_name"
)

// DefaultShippingRate seeds new drafts and variants
const DefaultShippingRate = "0"

// Pricing is the price/mrp/stock/shipping quadruple, kept as the strings the
// operator typed.
type Pricing struct {
	MRP          string `json:"mrp"`
	Price        string `json:"price"`
	Stock        string `json:"stock"`
	ShippingRate string `json:"shipping_rate"`
}

func (p Pricing) with(field Field, value string) (Pricing, bool) {
	switch field {
	case FieldMRP:
		p.MRP = value
	case FieldPrice:
		p.Price = value
	case FieldStock:
		p.Stock = value
	case FieldShippingRate:
		p.ShippingRate = value
	default:
		return p, false
	}
	return p, true
}

// Upload is freshly chosen binary image content that has not been sent yet
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	PreviewID   string
}

// ImageRef is either an image the backend already stores (URL) or an Upload.
// The zero value means "no image".
type ImageRef struct {
	URL    string
	Upload *Upload
}

func ExistingImage(url string) ImageRef {
	return ImageRef{URL: url}
}

func UploadedImage(u *Upload) ImageRef {
	return ImageRef{Upload: u}
}

func (i ImageRef) IsEmpty() bool {
	return i.Upload == nil && i.URL == ""
}

func (i ImageRef) IsUpload() bool {
	return i.Upload != nil
}

type VariantDraft struct {
	ID        int64
	Name      string
	Pricing   Pricing
	Image     ImageRef
	IsDefault bool
}

// Draft is the in-memory edit state of a product being created or edited.
//
// Pricing has a single source of truth: the default variant when variants
// exist, the standalone record otherwise. BasePricing projects it.
type Draft struct {
	ProductID   int64 // zero until the product exists
	Name        string
	Description string
	Category    string
	Brand       string
	Image       ImageRef
	Gallery     []ImageRef
	Variants    []VariantDraft

	standalone Pricing
}

// New returns the empty draft used to create a product
func New() Draft {
	return Draft{standalone: Pricing{ShippingRate: DefaultShippingRate}}
}

// FromProduct maps a persisted product into an editable draft
func FromProduct(p structs.Product) Draft {
	d := Draft{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Image:       ExistingImage(p.Image),
		standalone: Pricing{
			MRP:          formatOptional(p.MRP),
			Price:        formatNumber(p.Price),
			Stock:        strconv.Itoa(p.Stock),
			ShippingRate: formatNumber(p.ShippingRate),
		},
	}

	for _, url := range p.Images {
		d.Gallery = append(d.Gallery, ExistingImage(url))
	}

	for _, v := range p.Variants {
		d.Variants = append(d.Variants, VariantDraft{
			ID:   v.ID,
			Name: v.VariantName,
			Pricing: Pricing{
				MRP:          formatOptional(v.MRP),
				Price:        formatNumber(v.Price),
				Stock:        strconv.Itoa(v.Stock),
				ShippingRate: formatNumber(v.ShippingRate),
			},
			Image:     ExistingImage(v.Image),
			IsDefault: v.IsDefault,
		})
	}

	d.normalizeDefault()
	return d
}

// BasePricing is what the "Base Pricing" section shows
func (d Draft) BasePricing() Pricing {
	if idx := d.DefaultIndex(); idx >= 0 {
		return d.Variants[idx].Pricing
	}
	return d.standalone
}

// DefaultIndex returns the index of the default variant, or -1
func (d Draft) DefaultIndex() int {
	for i, v := range d.Variants {
		if v.IsDefault {
			return i
		}
	}
	return -1
}

// HidesVariantEditor reports the "internal default" case: one variant with a
// placeholder name, which the UI folds into base pricing.
func (d Draft) HidesVariantEditor() bool {
	if len(d.Variants) != 1 {
		return false
	}
	switch strings.TrimSpace(d.Variants[0].Name) {
	case "", "Default", "Standard":
		return true
	}
	return false
}

// FindUpload looks up an upload anywhere in the draft by its preview handle
func (d Draft) FindUpload(previewID string) (*Upload, bool) {
	match := func(ref ImageRef) bool {
		return ref.Upload != nil && ref.Upload.PreviewID == previewID
	}

	if match(d.Image) {
		return d.Image.Upload, true
	}
	for _, img := range d.Gallery {
		if match(img) {
			return img.Upload, true
		}
	}
	for _, v := range d.Variants {
		if match(v.Image) {
			return v.Image.Upload, true
		}
	}
	return nil, false
}

func (d Draft) clone() Draft {
	out := d
	out.Gallery = append([]ImageRef(nil), d.Gallery...)
	out.Variants = append([]VariantDraft(nil), d.Variants...)
	return out
}

// normalizeDefault keeps exactly one default when variants exist: none
// promotes the first variant, several keep the first one flagged.
func (d *Draft) normalizeDefault() {
	found := false
	for i := range d.Variants {
		if d.Variants[i].IsDefault {
			if found {
				d.Variants[i].IsDefault = false
			}
			found = true
		}
	}
	if !found && len(d.Variants) > 0 {
		d.Variants[0].IsDefault = true
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatOptional renders a missing or zero MRP as blank
func formatOptional(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return formatNumber(*v)
}
