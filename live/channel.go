// Package live delivers push notifications about order changes. Events carry
// no payload the console relies on: each one only means "the order
// collection may have changed, refetch it".
package live

import (
	"context"
	"fmt"
	"shopadmin_server/structs"

	"github.com/MonkyMars/gecho"
)

type Kind string

const (
	KindNewOrder     Kind = "new_order"
	KindOrderUpdated Kind = "order_updated"
)

// Kinds lists every event kind the console reacts to
var Kinds = []Kind{KindNewOrder, KindOrderUpdated}

func (k Kind) Valid() bool {
	return k == KindNewOrder || k == KindOrderUpdated
}

type Event struct {
	Kind Kind
}

// Channel is a source of order events. The returned channel is closed when
// ctx is cancelled or the Channel is closed.
type Channel interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Transport names accepted by LIVE_TRANSPORT
const (
	TransportSSE   = "sse"
	TransportRedis = "redis"
	TransportNone  = "none"
)

// New builds the channel selected by configuration
func New(live *structs.LiveConfig, backendBaseURL string, logger *gecho.Logger) (Channel, error) {
	switch live.Transport {
	case TransportSSE, "":
		return NewSSEChannel(backendBaseURL+live.EventsPath, live.ReconnectDelay, logger), nil
	case TransportRedis:
		return NewRedisChannel(live, logger), nil
	case TransportNone:
		return NoopChannel{}, nil
	default:
		return nil, fmt.Errorf("unknown live transport %q", live.Transport)
	}
}

// NoopChannel never fires. Its subscription closes with ctx.
type NoopChannel struct{}

func (NoopChannel) Subscribe(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		<-ctx.Done()
		close(out)
	}()
	return out, nil
}

func (NoopChannel) Close() error { return nil }
