package products

import (
	"net/http"
	"shopadmin_server/handling"

	"github.com/MonkyMars/gecho"
)

// RequestDelete arms the deletion of one product. Nothing is sent to the
// backend until the deletion is confirmed.
func (p *ProductRoutesManager) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("error.products.invalidProductId"), gecho.Send())
		return
	}

	if err := p.catalogService.RequestDelete(id); err != nil {
		handling.HandleError(err, "error.products.deleteFailed", p.logger, w)
		return
	}

	product, _ := p.catalogService.Product(id)
	gecho.Success(w,
		gecho.WithMessage("confirm.products.delete"),
		gecho.WithData(map[string]any{
			"pending_delete": id,
			"name":           product.Name,
		}),
		gecho.Send(),
	)
}

func (p *ProductRoutesManager) CancelDelete(w http.ResponseWriter, r *http.Request) {
	p.catalogService.CancelDelete()
	gecho.Success(w,
		gecho.WithMessage("success.products.deleteCancelled"),
		gecho.Send(),
	)
}

func (p *ProductRoutesManager) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("error.products.invalidProductId"), gecho.Send())
		return
	}

	if err := p.catalogService.ConfirmDelete(r.Context(), id); err != nil {
		handling.HandleError(err, "error.products.deleteFailed", p.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.deleted"),
		gecho.WithData(map[string]int64{"deleted": id}),
		gecho.Send(),
	)
}
