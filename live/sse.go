package live

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/r3labs/sse/v2"
)

// SSEChannel holds one text/event-stream connection per subscription and
// reconnects after a fixed delay, or the delay the server last sent in a
// retry field. There is no backoff.
type SSEChannel struct {
	url    string
	delay  time.Duration
	logger *gecho.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
	closed  bool
}

func NewSSEChannel(url string, delay time.Duration, logger *gecho.Logger) *SSEChannel {
	return &SSEChannel{
		url:    url,
		delay:  delay,
		logger: logger,
	}
}

func (c *SSEChannel) Subscribe(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("sse channel closed")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancels = append(c.cancels, cancel)

	out := make(chan Event, len(Kinds))
	go c.run(ctx, out)
	return out, nil
}

func (c *SSEChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	return nil
}

func (c *SSEChannel) run(ctx context.Context, out chan<- Event) {
	defer close(out)

	retry := &fixedRetry{delay: c.delay}
	client := c.newClient(retry)

	for {
		// returns nil when the server ends the stream, errors are retried inside
		err := client.SubscribeWithContext(ctx, "", func(msg *sse.Event) {
			c.dispatch(ctx, retry, msg, out)
		})
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("stream closed by server")
		}
		c.disconnected(err, retry.delay)

		t := time.NewTimer(retry.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// newClient builds a client for one subscription. The client keeps the last
// event id and sends it as Last-Event-ID when it reconnects.
func (c *SSEChannel) newClient(retry *fixedRetry) *sse.Client {
	client := sse.NewClient(c.url)
	client.Connection = &http.Client{} // no timeout, the stream is long-lived
	client.ReconnectStrategy = retry
	client.ReconnectNotify = c.disconnected
	client.ResponseValidator = func(_ *sse.Client, resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
			resp.Body.Close()
			return fmt.Errorf("unexpected content type %q", ct)
		}
		c.logger.Info("Connected to order event stream", gecho.Field("url", c.url))
		return nil
	}
	return client
}

func (c *SSEChannel) dispatch(ctx context.Context, retry *fixedRetry, msg *sse.Event, out chan<- Event) {
	if len(msg.Retry) > 0 {
		if ms, err := strconv.Atoi(strings.TrimSpace(string(msg.Retry))); err == nil && ms >= 0 {
			retry.delay = time.Duration(ms) * time.Millisecond
		}
	}

	kind, ok := resolveKind(string(msg.Event), string(msg.Data))
	if !ok {
		if len(msg.Event) > 0 || len(msg.Data) > 0 {
			c.logger.Debug("Ignoring order stream event", gecho.Field("event", string(msg.Event)))
		}
		return
	}
	select {
	case out <- Event{Kind: kind}:
	case <-ctx.Done():
	}
}

func (c *SSEChannel) disconnected(err error, next time.Duration) {
	c.logger.Warn("Order event stream disconnected",
		gecho.Field("url", c.url),
		gecho.Field("error", err),
		gecho.Field("reconnect_in", next.String()),
	)
}

// fixedRetry is the client's reconnect strategy: the same delay every time.
// Events and reconnects run on the subscribing goroutine, so a retry field
// can update delay without locking.
type fixedRetry struct {
	delay time.Duration
}

func (r *fixedRetry) NextBackOff() time.Duration { return r.delay }

func (r *fixedRetry) Reset() {}

// resolveKind maps a dispatched event to a kind. Unnamed events whose data is
// a bare kind name are accepted too.
func resolveKind(eventName, data string) (Kind, bool) {
	if k := Kind(eventName); k.Valid() {
		return k, true
	}
	if eventName == "" || eventName == "message" {
		if k := Kind(strings.TrimSpace(data)); k.Valid() {
			return k, true
		}
	}
	return "", false
}
