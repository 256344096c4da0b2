package services

import (
	"context"
	"fmt"
	"shopadmin_server/clients"
	"shopadmin_server/lib"
	"shopadmin_server/live"
	"shopadmin_server/structs"
	"slices"
	"strings"
	"sync"

	"github.com/MonkyMars/gecho"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// AllStatuses is the order filter that matches every status
const AllStatuses = "all"

// orderTransitions are the operator-triggered edges. pending -> shipped is a
// shortcut past confirmation.
var orderTransitions = map[structs.OrderStatus][]structs.OrderStatus{
	structs.OrderStatusPending: {
		structs.OrderStatusConfirmed,
		structs.OrderStatusShipped,
		structs.OrderStatusCancelled,
	},
	structs.OrderStatusConfirmed: {
		structs.OrderStatusShipped,
		structs.OrderStatusCancelled,
	},
	structs.OrderStatusShipped: {
		structs.OrderStatusDelivered,
	},
	structs.OrderStatusDelivered: {},
	structs.OrderStatusCancelled: {},
}

// OrderService is the order console: the current order collection, kept
// fresh by push events and refetched after every status change.
type OrderService struct {
	logger  *gecho.Logger
	backend OrderBackend
	channel live.Channel

	mu      sync.RWMutex
	orders  []structs.Order
	etag    string
	version uint64
	loaded  bool

	subMu  sync.Mutex
	subs   map[chan uint64]struct{}
	cancel context.CancelFunc
	refire func()
}

func NewOrderService(logger *gecho.Logger, backend OrderBackend, channel live.Channel) *OrderService {
	return &OrderService{
		logger:  logger,
		backend: backend,
		channel: channel,
		subs:    make(map[chan uint64]struct{}),
	}
}

// Start performs the initial fetch and attaches the push channel. A failed
// initial fetch is logged, not fatal: the next event or refresh retries.
func (ors *OrderService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	events, err := ors.channel.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to order events: %w", err)
	}

	// a refetch outlives Close, only the listener is detached
	trigger := live.NewTrigger(func(ctx context.Context) {
		ors.refetch(context.WithoutCancel(ctx), "live")
	})

	ors.subMu.Lock()
	ors.cancel = cancel
	ors.refire = trigger.Fire
	ors.subMu.Unlock()

	go trigger.Start(ctx)
	go trigger.Forward(events, func(ev live.Event) {
		LiveEvents.WithLabelValues(string(ev.Kind)).Inc()
		ors.logger.Debug("Order event received", gecho.Field("kind", ev.Kind))
	})

	ors.refetch(ctx, "initial")
	return nil
}

// Close detaches the push channel and ends every subscription
func (ors *OrderService) Close() {
	ors.subMu.Lock()
	defer ors.subMu.Unlock()

	if ors.cancel != nil {
		ors.cancel()
		ors.cancel = nil
	}
	ors.refire = nil
	for ch := range ors.subs {
		close(ch)
		delete(ors.subs, ch)
	}
}

// Refresh asks for a refetch. While the console runs the request goes through
// the coalescing trigger; otherwise the fetch runs inline.
func (ors *OrderService) Refresh(ctx context.Context) error {
	ors.subMu.Lock()
	fire := ors.refire
	ors.subMu.Unlock()

	if fire != nil {
		fire()
		return nil
	}
	_, err := ors.Fetch(ctx)
	return err
}

func (ors *OrderService) refetch(ctx context.Context, reason string) {
	if _, err := ors.Fetch(ctx); err != nil {
		ors.logger.Error("Failed to fetch orders", gecho.Field("reason", reason), gecho.Field("error", err))
	}
}

// Fetch pulls the collection and replaces it only when it differs from the
// current one. changed reports whether a replacement happened.
func (ors *OrderService) Fetch(ctx context.Context) (changed bool, err error) {
	list, err := ors.backend.ListOrders(ctx)
	if err != nil {
		OrderRefetches.WithLabelValues("error").Inc()
		return false, fmt.Errorf("fetch orders: %w", err)
	}

	ors.mu.Lock()
	changed = !ors.loaded || !ors.sameSnapshot(list)
	var version uint64
	if changed {
		ors.orders = list.Orders
		ors.etag = list.ETag
		ors.version++
	}
	ors.loaded = true
	version = ors.version
	ors.mu.Unlock()

	if !changed {
		OrderRefetches.WithLabelValues("unchanged").Inc()
		return false, nil
	}

	OrderRefetches.WithLabelValues("changed").Inc()
	ors.logger.Debug("Order collection replaced", gecho.Field("version", version), gecho.Field("count", len(list.Orders)))
	ors.notify(version)
	return true, nil
}

// sameSnapshot compares ETags when both sides have one and falls back to
// structural equality. Expects ors.mu to be held.
func (ors *OrderService) sameSnapshot(list *clients.OrderList) bool {
	if ors.etag != "" && list.ETag != "" {
		return ors.etag == list.ETag
	}
	return cmp.Equal(ors.orders, list.Orders, cmpopts.EquateEmpty())
}

// Snapshot returns the current collection and its version
func (ors *OrderService) Snapshot() ([]structs.Order, uint64) {
	ors.mu.RLock()
	defer ors.mu.RUnlock()
	return ors.orders, ors.version
}

func (ors *OrderService) Loaded() bool {
	ors.mu.RLock()
	defer ors.mu.RUnlock()
	return ors.loaded
}

// Filter matches the order number or customer name against search, case
// insensitive, and the status against the filter or "all".
func (ors *OrderService) Filter(search, status string) []structs.Order {
	ors.mu.RLock()
	defer ors.mu.RUnlock()

	term := strings.ToLower(search)
	status = strings.ToLower(status)

	out := make([]structs.Order, 0, len(ors.orders))
	for _, o := range ors.orders {
		matchesSearch := strings.Contains(strings.ToLower(o.OrderNumber), term) ||
			strings.Contains(strings.ToLower(o.CustomerName), term)
		matchesStatus := status == "" || status == AllStatuses || strings.ToLower(string(o.Status)) == status

		if matchesSearch && matchesStatus {
			out = append(out, o)
		}
	}
	return out
}

// Get returns one order of the current collection
func (ors *OrderService) Get(id int64) (structs.Order, error) {
	ors.mu.RLock()
	defer ors.mu.RUnlock()
	idx := slices.IndexFunc(ors.orders, func(o structs.Order) bool { return o.ID == id })
	if idx < 0 {
		return structs.Order{}, fmt.Errorf("order %d: %w", id, lib.ErrOrderNotFound)
	}
	return ors.orders[idx], nil
}

// AllowedTransitions lists the statuses an order in status can move to.
// Terminal and unknown statuses have none.
func AllowedTransitions(status structs.OrderStatus) []structs.OrderStatus {
	next := orderTransitions[normalizeStatus(status)]
	return slices.Clone(next)
}

func isValidStatusTransition(current, next structs.OrderStatus) bool {
	return slices.Contains(orderTransitions[normalizeStatus(current)], normalizeStatus(next))
}

func normalizeStatus(s structs.OrderStatus) structs.OrderStatus {
	return structs.OrderStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// Transition moves an order to target. A nil comment means the operator
// dismissed the prompt: nothing is sent. Delivered orders are also marked
// paid. Success triggers a refetch; failure leaves the collection untouched.
func (ors *OrderService) Transition(ctx context.Context, id int64, target structs.OrderStatus, comment *string) error {
	if comment == nil {
		return lib.ErrTransitionAborted
	}

	order, err := ors.Get(id)
	if err != nil {
		return err
	}

	target = normalizeStatus(target)
	if !isValidStatusTransition(order.Status, target) {
		return fmt.Errorf("%w from %s to %s", lib.ErrInvalidTransition, order.Status, target)
	}

	update := structs.StatusUpdate{Status: target, Comment: *comment}
	if target == structs.OrderStatusDelivered {
		update.PaymentStatus = structs.PaymentStatusPaid
	}

	if err := ors.backend.UpdateOrderStatus(ctx, id, update); err != nil {
		ors.logger.Error("Failed to update order status",
			gecho.Field("order_id", id),
			gecho.Field("status", target),
			gecho.Field("error", err),
		)
		return fmt.Errorf("update order %d: %w", id, err)
	}

	ors.logger.Info("Order status updated",
		gecho.Field("order_id", id),
		gecho.Field("old_status", order.Status),
		gecho.Field("new_status", target),
	)

	ors.refetch(ctx, "transition")
	return nil
}

// Subscribe returns a channel that receives the collection version after
// every replacement. Slow readers only see the latest version. The returned
// func unsubscribes.
func (ors *OrderService) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	ors.subMu.Lock()
	ors.subs[ch] = struct{}{}
	ors.subMu.Unlock()

	return ch, func() {
		ors.subMu.Lock()
		defer ors.subMu.Unlock()
		if _, ok := ors.subs[ch]; ok {
			delete(ors.subs, ch)
			close(ch)
		}
	}
}

func (ors *OrderService) notify(version uint64) {
	ors.subMu.Lock()
	defer ors.subMu.Unlock()
	for ch := range ors.subs {
		select {
		case <-ch:
		default:
		}
		ch <- version
	}
}
