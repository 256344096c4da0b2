package drafts

import (
	"fmt"
	"shopadmin_server/form"
	"shopadmin_server/lib"
)

type imageView struct {
	URL       string `json:"url"`
	PreviewID string `json:"preview_id,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

type variantView struct {
	ID        int64        `json:"id,omitempty"`
	Name      string       `json:"variant_name"`
	Pricing   form.Pricing `json:"pricing"`
	Image     *imageView   `json:"image,omitempty"`
	IsDefault bool         `json:"is_default"`
}

// draftView is what the product form renders
type draftView struct {
	ID                 string        `json:"id"`
	Mode               string        `json:"mode"` // create or edit
	ProductID          int64         `json:"product_id,omitempty"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Category           string        `json:"category"`
	Brand              string        `json:"brand"`
	BasePricing        form.Pricing  `json:"base_pricing"`
	Image              *imageView    `json:"image,omitempty"`
	Gallery            []imageView   `json:"gallery"`
	Variants           []variantView `json:"variants"`
	HidesVariantEditor bool          `json:"hides_variant_editor"`
}

func (d *DraftRoutesManager) view(id string, draft form.Draft) draftView {
	v := draftView{
		ID:                 id,
		Mode:               "create",
		ProductID:          draft.ProductID,
		Name:               draft.Name,
		Description:        draft.Description,
		Category:           draft.Category,
		Brand:              draft.Brand,
		BasePricing:        draft.BasePricing(),
		Image:              d.imageView(id, draft.Image),
		Gallery:            make([]imageView, 0, len(draft.Gallery)),
		Variants:           make([]variantView, 0, len(draft.Variants)),
		HidesVariantEditor: draft.HidesVariantEditor(),
	}
	if draft.ProductID != 0 {
		v.Mode = "edit"
	}

	for _, img := range draft.Gallery {
		if iv := d.imageView(id, img); iv != nil {
			v.Gallery = append(v.Gallery, *iv)
		}
	}
	for _, variant := range draft.Variants {
		v.Variants = append(v.Variants, variantView{
			ID:        variant.ID,
			Name:      variant.Name,
			Pricing:   variant.Pricing,
			Image:     d.imageView(id, variant.Image),
			IsDefault: variant.IsDefault,
		})
	}
	return v
}

// imageView resolves stored images against the backend and points uploads at
// their preview route
func (d *DraftRoutesManager) imageView(draftID string, ref form.ImageRef) *imageView {
	switch {
	case ref.IsUpload():
		return &imageView{
			URL:       fmt.Sprintf("/drafts/%s/previews/%s", draftID, ref.Upload.PreviewID),
			PreviewID: ref.Upload.PreviewID,
			Filename:  ref.Upload.Filename,
		}
	case ref.IsEmpty():
		return nil
	default:
		return &imageView{URL: lib.ResolveImageURL(d.imageBaseURL, ref.URL)}
	}
}
