package orders

import (
	"errors"
	"net/http"
	"shopadmin_server/handling"
	"shopadmin_server/lib"
	"shopadmin_server/services"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

// statusRequest moves an order along its lifecycle. A missing comment means
// the operator dismissed the prompt; an empty one is a valid answer.
type statusRequest struct {
	Status  structs.OrderStatus `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
	Comment *string             `json:"comment"`
}

func (o *OrderRoutesManager) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("error.orders.invalidOrderId"), gecho.Send())
		return
	}

	body, err := lib.ExtractAndValidateBody[statusRequest](r)
	if err != nil {
		var ve *lib.ValidationError
		if errors.As(err, &ve) {
			handling.HandleError(err, "error.validation.failed", o.logger, w)
			return
		}
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidRequestBody"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	if err := o.orderService.Transition(r.Context(), id, body.Status, body.Comment); err != nil {
		handling.HandleError(err, "error.orders.failedToUpdateStatus", o.logger, w)
		return
	}

	order, err := o.orderService.Get(id)
	if err != nil {
		// the refetch dropped the order; the update itself went through
		gecho.Success(w, gecho.WithMessage("success.orders.statusUpdated"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage("success.orders.statusUpdated"),
		gecho.WithData(orderDetails{
			Order:              order,
			AllowedTransitions: services.AllowedTransitions(order.Status),
		}),
		gecho.Send(),
	)
}
