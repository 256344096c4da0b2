package orders

import (
	"net/http"
	"shopadmin_server/handling"
	"shopadmin_server/services"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

type orderDetails struct {
	structs.Order
	AllowedTransitions []structs.OrderStatus `json:"allowed_transitions"`
}

// ListOrders handles GET /orders?search=&status=. The collection itself is
// kept current by the live channel; it is fetched here only when nothing has
// been loaded yet.
func (o *OrderRoutesManager) ListOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := handling.ParseOrderQuery(r)
	if err != nil {
		o.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	if !o.orderService.Loaded() {
		if _, err := o.orderService.Fetch(r.Context()); err != nil {
			handling.HandleError(err, "error.orders.failedToFetch", o.logger, w)
			return
		}
	}

	orders := o.orderService.Filter(opts.Search, opts.Status)
	_, version := o.orderService.Snapshot()

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"orders":   orders,
			"statuses": append([]structs.OrderStatus{services.AllStatuses}, structs.OrderStatuses...),
			"filters": map[string]string{
				"search": opts.Search,
				"status": opts.Status,
			},
			"meta": map[string]any{
				"count":   len(orders),
				"version": version,
			},
		}),
		gecho.Send(),
	)
}

// GetOrder handles GET /orders/{id} with the statuses the order may move to
func (o *OrderRoutesManager) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseID(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("error.orders.invalidOrderId"), gecho.Send())
		return
	}

	order, err := o.orderService.Get(id)
	if err != nil {
		handling.HandleError(err, "error.orders.failedToFetchOne", o.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithData(orderDetails{
			Order:              order,
			AllowedTransitions: services.AllowedTransitions(order.Status),
		}),
		gecho.Send(),
	)
}
