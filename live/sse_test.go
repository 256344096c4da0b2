package live

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"shopadmin_server/config"
	"shopadmin_server/structs"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestSSEChannel_ParsesAndReconnects(t *testing.T) {
	var conns atomic.Int32
	var mu sync.Mutex
	var lastIDs []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		mu.Lock()
		lastIDs = append(lastIDs, r.Header.Get("Last-Event-ID"))
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		if n == 1 {
			fmt.Fprint(w, ": keep-alive\n\n")
			fmt.Fprint(w, "retry: 10\nevent: new_order\ndata: {\"id\":1}\nid: 7\n\n")
			fmt.Fprint(w, "event: something_else\ndata: x\n\n")
			fmt.Fprint(w, "data: order_updated\n\n")
			flusher.Flush()
			return // drop the connection
		}

		fmt.Fprint(w, "event: order_updated\ndata: {}\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ch := NewSSEChannel(srv.URL+"/events", time.Hour, config.NewLogger(false))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := ch.Subscribe(ctx)
	require.NoError(t, err)

	assert.Equal(t, KindNewOrder, nextEvent(t, events).Kind)
	assert.Equal(t, KindOrderUpdated, nextEvent(t, events).Kind)

	// the server's retry field replaces the hour-long default delay
	assert.Equal(t, KindOrderUpdated, nextEvent(t, events).Kind)
	assert.Equal(t, int32(2), conns.Load())

	mu.Lock()
	assert.Equal(t, []string{"", "7"}, lastIDs)
	mu.Unlock()

	require.NoError(t, ch.Close())
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSSEChannel_RejectsNonStream(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"event":"new_order"}`)
	}))
	defer srv.Close()

	ch := NewSSEChannel(srv.URL, 10*time.Millisecond, config.NewLogger(false))
	ctx, cancel := context.WithCancel(context.Background())
	events, err := ch.Subscribe(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return conns.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	for ev := range events {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestSSEChannel_SubscribeAfterClose(t *testing.T) {
	ch := NewSSEChannel("http://127.0.0.1:1", time.Second, config.NewLogger(false))
	require.NoError(t, ch.Close())
	_, err := ch.Subscribe(context.Background())
	assert.Error(t, err)
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		event, data string
		want        Kind
		ok          bool
	}{
		{"new_order", "", KindNewOrder, true},
		{"order_updated", `{"id":3}`, KindOrderUpdated, true},
		{"", "new_order", KindNewOrder, true},
		{"message", " order_updated ", KindOrderUpdated, true},
		{"ping", "new_order", "", false},
		{"", `{"type":"new_order"}`, "", false},
	}
	for _, tt := range tests {
		got, ok := resolveKind(tt.event, tt.data)
		assert.Equal(t, tt.ok, ok, "%q/%q", tt.event, tt.data)
		assert.Equal(t, tt.want, got, "%q/%q", tt.event, tt.data)
	}
}

func TestNew_SelectsTransport(t *testing.T) {
	logger := config.NewLogger(false)

	ch, err := New(&structs.LiveConfig{Transport: "none"}, "http://x", logger)
	require.NoError(t, err)
	assert.IsType(t, NoopChannel{}, ch)

	ch, err = New(&structs.LiveConfig{Transport: "sse", EventsPath: "/events"}, "http://x", logger)
	require.NoError(t, err)
	require.IsType(t, &SSEChannel{}, ch)
	assert.Equal(t, "http://x/events", ch.(*SSEChannel).url)

	ch, err = New(&structs.LiveConfig{Transport: "redis", RedisAddress: "127.0.0.1:1"}, "http://x", logger)
	require.NoError(t, err)
	assert.IsType(t, &RedisChannel{}, ch)
	_ = ch.Close()

	_, err = New(&structs.LiveConfig{Transport: "carrier-pigeon"}, "http://x", logger)
	assert.Error(t, err)
}
