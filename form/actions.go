package form

import (
	"fmt"
	"shopadmin_server/lib"
)

// Action is one edit of a draft. The set is closed: only the types in this
// file implement it.
type Action interface {
	apply(d Draft) (Draft, error)
}

// Apply returns the draft with the action applied. d is never modified; on
// error the returned draft is d unchanged.
func Apply(d Draft, a Action) (Draft, error) {
	if a == nil {
		return d, lib.ErrUnknownAction
	}
	next, err := a.apply(d.clone())
	if err != nil {
		return d, err
	}
	next.normalizeDefault()
	return next, nil
}

// Replay applies actions in order, stopping at the first failure
func Replay(d Draft, actions ...Action) (Draft, error) {
	for i, a := range actions {
		next, err := Apply(d, a)
		if err != nil {
			return d, fmt.Errorf("action %d: %w", i, err)
		}
		d = next
	}
	return d, nil
}

// SetField overwrites a base field. Pricing fields write the authoritative
// pricing record, so with a single variant that variant changes too.
type SetField struct {
	Field Field
	Value string
}

func (a SetField) apply(d Draft) (Draft, error) {
	switch a.Field {
	case FieldName:
		d.Name = a.Value
	case FieldDescription:
		d.Description = a.Value
	case FieldCategory:
		d.Category = a.Value
	case FieldBrand:
		d.Brand = a.Value
	case FieldMRP, FieldPrice, FieldStock, FieldShippingRate:
		if idx := d.DefaultIndex(); idx >= 0 {
			d.Variants[idx].Pricing, _ = d.Variants[idx].Pricing.with(a.Field, a.Value)
		} else {
			d.standalone, _ = d.standalone.with(a.Field, a.Value)
		}
	default:
		return d, fmt.Errorf("%w: %q", lib.ErrUnknownField, a.Field)
	}
	return d, nil
}

// AddVariant appends a variant seeded from the current base pricing. Only the
// first variant of a product becomes the default.
type AddVariant struct{}

func (AddVariant) apply(d Draft) (Draft, error) {
	seed := d.BasePricing()
	if seed.ShippingRate == "" {
		seed.ShippingRate = DefaultShippingRate
	}
	d.Variants = append(d.Variants, VariantDraft{
		Pricing:   seed,
		IsDefault: len(d.Variants) == 0,
	})
	return d, nil
}

// RemoveVariant deletes the variant at Index. Removing the default promotes
// the first remaining variant; removing the last variant keeps its pricing as
// the product's own.
type RemoveVariant struct {
	Index int
}

func (a RemoveVariant) apply(d Draft) (Draft, error) {
	if err := checkIndex(a.Index, len(d.Variants)); err != nil {
		return d, err
	}
	if len(d.Variants) == 1 {
		d.standalone = d.Variants[0].Pricing
	}
	d.Variants = append(d.Variants[:a.Index], d.Variants[a.Index+1:]...)
	return d, nil
}

// SetVariantField overwrites one field of one variant. On the default variant
// the change is what base pricing shows.
type SetVariantField struct {
	Index int
	Field Field
	Value string
}

func (a SetVariantField) apply(d Draft) (Draft, error) {
	if err := checkIndex(a.Index, len(d.Variants)); err != nil {
		return d, err
	}
	v := &d.Variants[a.Index]
	if a.Field == FieldVariantName {
		v.Name = a.Value
		return d, nil
	}
	pricing, ok := v.Pricing.with(a.Field, a.Value)
	if !ok {
		return d, fmt.Errorf("%w: %q", lib.ErrUnknownField, a.Field)
	}
	v.Pricing = pricing
	return d, nil
}

// SetDefaultVariant makes the variant at Index the only default
type SetDefaultVariant struct {
	Index int
}

func (a SetDefaultVariant) apply(d Draft) (Draft, error) {
	if err := checkIndex(a.Index, len(d.Variants)); err != nil {
		return d, err
	}
	for i := range d.Variants {
		d.Variants[i].IsDefault = i == a.Index
	}
	return d, nil
}

// SetPrimaryImage replaces the primary image; a zero Image clears it
type SetPrimaryImage struct {
	Image ImageRef
}

func (a SetPrimaryImage) apply(d Draft) (Draft, error) {
	d.Image = a.Image
	return d, nil
}

type AppendGalleryImages struct {
	Images []ImageRef
}

func (a AppendGalleryImages) apply(d Draft) (Draft, error) {
	for _, img := range a.Images {
		if img.IsEmpty() {
			continue
		}
		d.Gallery = append(d.Gallery, img)
	}
	return d, nil
}

type RemoveGalleryImage struct {
	Index int
}

func (a RemoveGalleryImage) apply(d Draft) (Draft, error) {
	if err := checkIndex(a.Index, len(d.Gallery)); err != nil {
		return d, err
	}
	d.Gallery = append(d.Gallery[:a.Index], d.Gallery[a.Index+1:]...)
	return d, nil
}

type SetVariantImage struct {
	Index int
	Image ImageRef
}

func (a SetVariantImage) apply(d Draft) (Draft, error) {
	if err := checkIndex(a.Index, len(d.Variants)); err != nil {
		return d, err
	}
	d.Variants[a.Index].Image = a.Image
	return d, nil
}

func checkIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: %d (have %d)", lib.ErrIndexOutOfRange, idx, n)
	}
	return nil
}
