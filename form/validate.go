package form

import (
	"shopadmin_server/lib"
	"strings"
)

type requiredFields struct {
	Name     string `json:"name" validate:"required"`
	Price    string `json:"price" validate:"required"`
	Stock    string `json:"stock" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// Validate is the only gate before submission. Numbers are not range checked.
func Validate(d Draft) error {
	base := d.BasePricing()
	return lib.ValidateStruct(requiredFields{
		Name:     strings.TrimSpace(d.Name),
		Price:    strings.TrimSpace(base.Price),
		Stock:    strings.TrimSpace(base.Stock),
		Category: strings.TrimSpace(d.Category),
	})
}
