package debug

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

// RefreshOrders fires the same refetch a push event would
func (drm *DebugRoutesManager) RefreshOrders(w http.ResponseWriter, r *http.Request) {
	if err := drm.orderService.Refresh(r.Context()); err != nil {
		drm.logger.Error("Manual order refresh failed", gecho.Field("error", err))
		gecho.ServiceUnavailable(w,
			gecho.WithMessage("error.orders.refreshFailed"),
			gecho.Send(),
		)
		return
	}

	_, version := drm.orderService.Snapshot()
	gecho.Success(w,
		gecho.WithMessage("success.orders.refreshRequested"),
		gecho.WithData(map[string]uint64{"version": version}),
		gecho.Send(),
	)
}

func (drm *DebugRoutesManager) SweepDrafts(w http.ResponseWriter, r *http.Request) {
	removed := drm.draftService.Sweep()
	gecho.Success(w,
		gecho.WithMessage("success.drafts.swept"),
		gecho.WithData(map[string]int{"removed": removed}),
		gecho.Send(),
	)
}
