package orders

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"shopadmin_server/clients"
	"shopadmin_server/config"
	"shopadmin_server/live"
	"shopadmin_server/services"
	"shopadmin_server/structs"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	mu      sync.Mutex
	orders  []structs.Order
	updates []map[string]any
}

func (s *stubBackend) setOrders(orders []structs.Order) {
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
}

func (s *stubBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/orders/admin/all":
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": s.orders})
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/api/v1/orders/admin/status/"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.updates = append(s.updates, body)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *stubBackend) sentUpdates() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func (s *stubBackend) updateCount() int {
	return len(s.sentUpdates())
}

func sampleOrders() []structs.Order {
	return []structs.Order{
		{ID: 1, OrderNumber: "ORD-1", CustomerName: "Asha", Status: structs.OrderStatusPending},
		{ID: 2, OrderNumber: "ORD-2", CustomerName: "Ravi", Status: structs.OrderStatusShipped},
		{ID: 3, OrderNumber: "ORD-3", CustomerName: "Mira", Status: structs.OrderStatusDelivered},
	}
}

func setup(t *testing.T) (*stubBackend, *services.OrderService, chi.Router) {
	t.Helper()
	stub := &stubBackend{orders: sampleOrders()}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	logger := config.NewLogger(false)
	backend := clients.NewBackend(&structs.BackendConfig{BaseURL: srv.URL, Prefix: "/api/v1", Timeout: 5 * time.Second}, logger)
	svc := services.NewOrderService(logger, backend, live.NoopChannel{})

	r := chi.NewRouter()
	NewOrderRoutesManager(logger, svc).RegisterRoutes(r)
	return stub, svc, r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListOrders_FetchesOnFirstUse(t *testing.T) {
	_, svc, r := setup(t)
	require.False(t, svc.Loaded())

	rec := do(r, http.MethodGet, "/orders?status=Pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORD-1")
	assert.NotContains(t, rec.Body.String(), "ORD-2")
	assert.True(t, svc.Loaded())

	rec = do(r, http.MethodGet, "/orders?search=ravi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORD-2")
	assert.NotContains(t, rec.Body.String(), "ORD-1")
}

func TestListOrders_RejectsUnknownStatus(t *testing.T) {
	_, _, r := setup(t)
	rec := do(r, http.MethodGet, "/orders?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	_, svc, r := setup(t)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	rec := do(r, http.MethodGet, "/orders/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "allowed_transitions")
	assert.Contains(t, rec.Body.String(), "ORD-2")

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/orders/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/orders/abc", "").Code)
}

func TestUpdateOrderStatus_MissingCommentSendsNothing(t *testing.T) {
	stub, svc, r := setup(t)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	rec := do(r, http.MethodPost, "/orders/1/status", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, stub.updateCount())
}

func TestUpdateOrderStatus_DeliveredMarksPaid(t *testing.T) {
	stub, svc, r := setup(t)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	rec := do(r, http.MethodPost, "/orders/2/status", `{"status":"delivered","comment":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	updates := stub.sentUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, map[string]any{"status": "delivered", "payment_status": "paid", "comment": ""}, updates[0])
}

func TestUpdateOrderStatus_IllegalTransition(t *testing.T) {
	stub, svc, r := setup(t)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	rec := do(r, http.MethodPost, "/orders/3/status", `{"status":"pending","comment":"undo"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, stub.updateCount())
}

func TestUpdateOrderStatus_InvalidBody(t *testing.T) {
	_, _, r := setup(t)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/orders/1/status", `{"status":"lost","comment":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/orders/1/status", `not json`).Code)
}

// nextEventName reads the stream until the next event line
func nextEventName(t *testing.T, sc *bufio.Scanner) string {
	t.Helper()
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "event:"); ok {
			return strings.TrimSpace(name)
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return ""
}

func TestStreamEvents_RelaysCollectionChanges(t *testing.T) {
	stub, svc, r := setup(t)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/orders/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"))

	sc := bufio.NewScanner(resp.Body)
	require.Equal(t, eventSnapshot, nextEventName(t, sc))

	stub.setOrders(sampleOrders()[:1])
	changed, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, changed)

	assert.Equal(t, eventOrdersChanged, nextEventName(t, sc))
}
