package handling

import (
	"errors"
	"net/http"
	"shopadmin_server/clients"
	"shopadmin_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleError writes the response matching err. msg is the message key used
// when err is not one of the known failures.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) {
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		gecho.BadRequest(w,
			gecho.WithMessage("error.validation.failed"),
			gecho.WithData(ve.Errors),
			gecho.Send(),
		)
		return
	}

	switch {
	case errors.Is(err, lib.ErrDraftNotFound):
		gecho.NotFound(w, gecho.WithMessage("error.drafts.notFound"), gecho.Send())
		return
	case errors.Is(err, lib.ErrDraftBusy):
		gecho.Conflict(w, gecho.WithMessage("error.drafts.submitInProgress"), gecho.Send())
		return
	case errors.Is(err, lib.ErrOrderNotFound):
		gecho.NotFound(w, gecho.WithMessage("error.orders.notFound"), gecho.Send())
		return
	case errors.Is(err, lib.ErrNotFound):
		gecho.NotFound(w, gecho.WithMessage("error.notFound"), gecho.WithData(err.Error()), gecho.Send())
		return
	case errors.Is(err, lib.ErrInvalidTransition):
		gecho.Conflict(w, gecho.WithMessage("error.orders.invalidTransition"), gecho.WithData(err.Error()), gecho.Send())
		return
	case errors.Is(err, lib.ErrDeleteNotArmed):
		gecho.Conflict(w, gecho.WithMessage("error.products.deleteNotRequested"), gecho.Send())
		return
	case errors.Is(err, lib.ErrTransitionAborted):
		gecho.BadRequest(w, gecho.WithMessage("error.orders.commentRequired"), gecho.Send())
		return
	case errors.Is(err, lib.ErrIndexOutOfRange),
		errors.Is(err, lib.ErrUnknownField),
		errors.Is(err, lib.ErrUnknownAction),
		errors.Is(err, lib.ErrUnsupportedImage):
		gecho.BadRequest(w, gecho.WithMessage("error.drafts.invalidEdit"), gecho.WithData(err.Error()), gecho.Send())
		return
	}

	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		logger.Warn("Backend request failed", gecho.Field("error", err), gecho.Field("msg", msg))
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			gecho.BadRequest(w, gecho.WithMessage(msg), gecho.WithData(apiErr.Message), gecho.Send())
			return
		}
		gecho.ServiceUnavailable(w, gecho.WithMessage(msg), gecho.WithData(apiErr.Message), gecho.Send())
		return
	}

	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))

	gecho.InternalServerError(w, gecho.WithMessage(msg), gecho.Send())
}
