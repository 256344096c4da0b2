package handling

import (
	"fmt"
	"shopadmin_server/form"
	"shopadmin_server/lib"
)

// Action types accepted by the draft actions route
const (
	ActionSetField            = "set_field"
	ActionAddVariant          = "add_variant"
	ActionRemoveVariant       = "remove_variant"
	ActionSetVariantField     = "set_variant_field"
	ActionSetDefaultVariant   = "set_default_variant"
	ActionSetPrimaryImage     = "set_primary_image"
	ActionAppendGalleryImages = "append_gallery_images"
	ActionRemoveGalleryImage  = "remove_gallery_image"
	ActionSetVariantImage     = "set_variant_image"
)

// ActionRequest is the JSON form of one draft edit. Image actions carry
// existing image URLs; new binaries go through the upload route.
type ActionRequest struct {
	Type  string   `json:"type" validate:"required,oneof=set_field add_variant remove_variant set_variant_field set_default_variant set_primary_image append_gallery_images remove_gallery_image set_variant_image"`
	Field string   `json:"field,omitempty"`
	Value string   `json:"value,omitempty"`
	Index *int     `json:"index,omitempty" validate:"omitempty,gte=0"`
	URL   string   `json:"url,omitempty"`
	URLs  []string `json:"urls,omitempty"`
}

func (a ActionRequest) ToAction() (form.Action, error) {
	switch a.Type {
	case ActionSetField:
		if a.Field == "" {
			return nil, missing("field")
		}
		return form.SetField{Field: form.Field(a.Field), Value: a.Value}, nil
	case ActionAddVariant:
		return form.AddVariant{}, nil
	case ActionSetPrimaryImage:
		return form.SetPrimaryImage{Image: form.ExistingImage(a.URL)}, nil
	case ActionAppendGalleryImages:
		images := make([]form.ImageRef, 0, len(a.URLs))
		for _, url := range a.URLs {
			images = append(images, form.ExistingImage(url))
		}
		return form.AppendGalleryImages{Images: images}, nil
	}

	// everything below addresses a list element
	if a.Index == nil {
		return nil, missing("index")
	}
	idx := *a.Index

	switch a.Type {
	case ActionRemoveVariant:
		return form.RemoveVariant{Index: idx}, nil
	case ActionSetVariantField:
		if a.Field == "" {
			return nil, missing("field")
		}
		return form.SetVariantField{Index: idx, Field: form.Field(a.Field), Value: a.Value}, nil
	case ActionSetDefaultVariant:
		return form.SetDefaultVariant{Index: idx}, nil
	case ActionRemoveGalleryImage:
		return form.RemoveGalleryImage{Index: idx}, nil
	case ActionSetVariantImage:
		return form.SetVariantImage{Index: idx, Image: form.ExistingImage(a.URL)}, nil
	}

	return nil, fmt.Errorf("%w: %q", lib.ErrUnknownAction, a.Type)
}

func missing(field string) error {
	return &lib.ValidationError{Errors: []lib.FieldError{{Field: field, Message: "is required"}}}
}
