package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Multipart part names understood by the backend
const (
	PartImage         = "image"
	PartImages        = "images"
	PartVariants      = "variants"
	PartVariantImages = "variant_images"
)

// Payload is an encoded product submission
type Payload struct {
	Body        []byte
	ContentType string
}

func (p *Payload) Reader() io.Reader {
	return bytes.NewReader(p.Body)
}

// submittedVariant is one element of the "variants" JSON part
type submittedVariant struct {
	ID           int64  `json:"id,omitempty"`
	VariantName  string `json:"variant_name"`
	MRP          string `json:"mrp"`
	Price        string `json:"price"`
	Stock        string `json:"stock"`
	ShippingRate string `json:"shipping_rate"`
	IsDefault    bool   `json:"is_default"`
	Image        string `json:"image,omitempty"`
}

// Placeholder is the token that stands in for the n-th uploaded variant image
func Placeholder(n int) string {
	return fmt.Sprintf("file:%d", n)
}

// Encode serializes the draft into the multipart create/update payload.
// Binary variant images are sent as repeated variant_images parts and
// referenced from the variants JSON by their position.
func Encode(d Draft) (*Payload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	base := d.BasePricing()
	fields := []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"description", d.Description},
		{"mrp", base.MRP},
		{"price", base.Price},
		{"stock", base.Stock},
		{"category", d.Category},
		{"brand", d.Brand},
		{"shipping_rate", base.ShippingRate},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	if err := writeImage(mw, PartImage, d.Image); err != nil {
		return nil, err
	}
	for _, img := range d.Gallery {
		if err := writeImage(mw, PartImages, img); err != nil {
			return nil, err
		}
	}

	if len(d.Variants) > 0 {
		variants := make([]submittedVariant, 0, len(d.Variants))
		uploaded := 0
		for _, v := range d.Variants {
			sv := submittedVariant{
				ID:           v.ID,
				VariantName:  v.Name,
				MRP:          v.Pricing.MRP,
				Price:        v.Pricing.Price,
				Stock:        v.Pricing.Stock,
				ShippingRate: v.Pricing.ShippingRate,
				IsDefault:    v.IsDefault,
				Image:        v.Image.URL,
			}
			if v.Image.IsUpload() {
				if err := writeFile(mw, PartVariantImages, v.Image.Upload); err != nil {
					return nil, err
				}
				sv.Image = Placeholder(uploaded)
				uploaded++
			}
			variants = append(variants, sv)
		}

		data, err := json.Marshal(variants)
		if err != nil {
			return nil, fmt.Errorf("encode variants: %w", err)
		}
		if err := mw.WriteField(PartVariants, string(data)); err != nil {
			return nil, fmt.Errorf("write variants: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return &Payload{Body: buf.Bytes(), ContentType: mw.FormDataContentType()}, nil
}

func writeImage(mw *multipart.Writer, name string, img ImageRef) error {
	switch {
	case img.IsUpload():
		return writeFile(mw, name, img.Upload)
	case img.URL != "":
		// existing images go back by URL so the backend keeps them
		if err := mw.WriteField(name, img.URL); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(mw *multipart.Writer, name string, u *Upload) error {
	contentType := u.ContentType
	filename := u.Filename
	if contentType == "" || filename == "" {
		detected := mimetype.Detect(u.Data)
		if contentType == "" {
			contentType = detected.String()
		}
		if filename == "" {
			filename = "upload" + detected.Extension()
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", name, err)
	}
	if _, err := part.Write(u.Data); err != nil {
		return fmt.Errorf("write %s part: %w", name, err)
	}
	return nil
}
