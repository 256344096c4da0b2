package orders

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/gin-contrib/sse"
)

const (
	eventSnapshot      = "snapshot"
	eventOrdersChanged = "orders_changed"
	eventPing          = "ping"

	retryMillis = 3000
)

// StreamEvents handles GET /orders/events. Every change of the order
// collection is relayed as one event carrying the new version; clients then
// reload GET /orders.
func (o *OrderRoutesManager) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		o.logger.Error("Response writer does not support streaming")
		gecho.InternalServerError(w,
			gecho.WithMessage("error.orders.streamUnsupported"),
			gecho.Send(),
		)
		return
	}

	versions, unsubscribe := o.orderService.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", sse.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, version := o.orderService.Snapshot()
	if err := o.send(w, flusher, eventSnapshot, version); err != nil {
		return
	}

	heartbeat := time.NewTicker(o.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-versions:
			if !ok {
				return
			}
			if err := o.send(w, flusher, eventOrdersChanged, v); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sse.Encode(w, sse.Event{Event: eventPing, Data: ""}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (o *OrderRoutesManager) send(w http.ResponseWriter, flusher http.Flusher, event string, version uint64) error {
	err := sse.Encode(w, sse.Event{
		Event: event,
		Id:    strconv.FormatUint(version, 10),
		Retry: retryMillis,
		Data:  map[string]uint64{"version": version},
	})
	if err != nil {
		o.logger.Debug("Event stream closed", gecho.Field("error", err))
		return err
	}
	flusher.Flush()
	return nil
}
