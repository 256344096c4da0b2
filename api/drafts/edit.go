package drafts

import (
	"errors"
	"io"
	"net/http"
	"shopadmin_server/handling"
	"shopadmin_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type createDraftRequest struct {
	ProductID int64 `json:"product_id" validate:"gte=0"`
}

// CreateDraft handles POST /drafts. A product_id opens the product for
// editing; an empty body starts a new product.
func (d *DraftRoutesManager) CreateDraft(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[createDraftRequest](r)
	if errors.Is(err, io.EOF) {
		body, err = &createDraftRequest{}, nil
	}
	if err != nil {
		d.badBody(w, err)
		return
	}

	id, draft, err := d.draftService.Create(r.Context(), body.ProductID)
	if err != nil {
		handling.HandleError(err, "error.products.failedToFetchOne", d.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.drafts.created"),
		gecho.WithData(d.view(id, draft)),
		gecho.Send(),
	)
}

func (d *DraftRoutesManager) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	draft, err := d.draftService.Get(id)
	if err != nil {
		handling.HandleError(err, "error.drafts.failedToFetch", d.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(d.view(id, draft)),
		gecho.Send(),
	)
}

func (d *DraftRoutesManager) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := d.draftService.Discard(chi.URLParam(r, "id")); err != nil {
		handling.HandleError(err, "error.drafts.failedToDiscard", d.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.drafts.discarded"),
		gecho.Send(),
	)
}

// ApplyAction handles POST /drafts/{id}/actions with one edit. A rejected
// edit leaves the draft untouched.
func (d *DraftRoutesManager) ApplyAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := lib.ExtractAndValidateBody[handling.ActionRequest](r)
	if err != nil {
		d.badBody(w, err)
		return
	}

	action, err := body.ToAction()
	if err != nil {
		handling.HandleError(err, "error.drafts.invalidEdit", d.logger, w)
		return
	}

	draft, err := d.draftService.Apply(id, action)
	if err != nil {
		handling.HandleError(err, "error.drafts.invalidEdit", d.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(d.view(id, draft)),
		gecho.Send(),
	)
}

// SubmitDraft handles POST /drafts/{id}/submit. The draft survives a failed
// submission so it can be sent again.
func (d *DraftRoutesManager) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := d.draftService.Submit(r.Context(), id)
	if err != nil {
		handling.HandleError(err, "error.products.failedToSave", d.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.products.saved"),
		gecho.WithData(map[string]any{
			"product": product,
		}),
		gecho.Send(),
	)
}

// badBody answers a body that failed to decode or validate
func (d *DraftRoutesManager) badBody(w http.ResponseWriter, err error) {
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		handling.HandleError(err, "error.validation.failed", d.logger, w)
		return
	}
	d.logger.Warn("Invalid request body", gecho.Field("error", err))
	gecho.BadRequest(w,
		gecho.WithMessage("error.invalidRequestBody"),
		gecho.WithData(err.Error()),
		gecho.Send(),
	)
}
