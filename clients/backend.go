// Package clients talks to the product/order REST backend. Calls are never
// retried; a failure is returned to the caller as an *APIError.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"shopadmin_server/form"
	"shopadmin_server/lib"
	"shopadmin_server/structs"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/sony/gobreaker/v2"
)

const maxResponseBytes = 16 << 20

// envelope is the backend's response wrapper
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type rawResponse struct {
	status int
	header http.Header
	data   json.RawMessage
}

// OrderList is one fetch of the admin order collection
type OrderList struct {
	Orders []structs.Order
	ETag   string // empty when the backend sends none
}

type Backend struct {
	baseURL string
	apiURL  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*rawResponse]
	logger  *gecho.Logger
}

func NewBackend(cfg *structs.BackendConfig, logger *gecho.Logger) *Backend {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	b := &Backend{
		baseURL: base,
		apiURL:  base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	if prefix := strings.Trim(cfg.Prefix, "/"); prefix != "" {
		b.apiURL = base + "/" + prefix
	}

	if cfg.CircuitBreaker {
		b.breaker = newBreaker(cfg, logger)
	}
	return b
}

func newBreaker(cfg *structs.BackendConfig, logger *gecho.Logger) *gobreaker.CircuitBreaker[*rawResponse] {
	const name = "backend"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.CircuitBreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.CircuitBreakerFailureRatio
		},
		// only an unreachable or failing backend counts against it
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.clientError()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Backend circuit breaker state change",
				gecho.Field("breaker", name),
				gecho.Field("from", from.String()),
				gecho.Field("to", to.String()),
			)
			BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	BreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[*rawResponse](settings)
}

// BaseURL is the backend origin, used to resolve relative image paths
func (b *Backend) BaseURL() string {
	return b.baseURL
}

func (b *Backend) ListProducts(ctx context.Context) ([]structs.Product, error) {
	const op = "list products"
	res, err := b.do(ctx, op, http.MethodGet, "/products", nil, "")
	if err != nil {
		return nil, err
	}
	var products []structs.Product
	if err := decodeData(op, res, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (b *Backend) GetProduct(ctx context.Context, id int64) (*structs.Product, error) {
	const op = "get product"
	res, err := b.do(ctx, op, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, "")
	if err != nil {
		return nil, err
	}
	var product structs.Product
	if err := decodeData(op, res, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct submits an encoded draft. The returned product is nil when
// the backend answers without one.
func (b *Backend) CreateProduct(ctx context.Context, payload *form.Payload) (*structs.Product, error) {
	const op = "create product"
	res, err := b.do(ctx, op, http.MethodPost, "/create/product", payload.Reader(), payload.ContentType)
	if err != nil {
		return nil, err
	}
	return optionalProduct(res), nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id int64, payload *form.Payload) (*structs.Product, error) {
	const op = "update product"
	res, err := b.do(ctx, op, http.MethodPut, fmt.Sprintf("/update/product/%d", id), payload.Reader(), payload.ContentType)
	if err != nil {
		return nil, err
	}
	return optionalProduct(res), nil
}

func (b *Backend) DeleteProduct(ctx context.Context, id int64) error {
	_, err := b.do(ctx, "delete product", http.MethodDelete, fmt.Sprintf("/delete/product/%d", id), nil, "")
	return err
}

func (b *Backend) ListOrders(ctx context.Context) (*OrderList, error) {
	const op = "list orders"
	res, err := b.do(ctx, op, http.MethodGet, "/orders/admin/all", nil, "")
	if err != nil {
		return nil, err
	}
	list := &OrderList{ETag: res.header.Get("ETag")}
	if err := decodeData(op, res, &list.Orders); err != nil {
		return nil, err
	}
	return list, nil
}

func (b *Backend) UpdateOrderStatus(ctx context.Context, id int64, update structs.StatusUpdate) error {
	const op = "update order status"
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("%s: encode body: %w", op, err)
	}
	_, err = b.do(ctx, op, http.MethodPut, fmt.Sprintf("/orders/admin/status/%d", id), bytes.NewReader(body), "application/json")
	return err
}

// Ping reports whether the backend answers at all. Any response below 500
// counts as reachable.
func (b *Backend) Ping(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create ping request: %w", err)
	}
	start := time.Now()
	resp, err := b.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, &APIError{Op: "ping", Message: err.Error(), Err: lib.ErrUnavailable}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode >= 500 {
		return elapsed, &APIError{Op: "ping", Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Err: lib.ErrUnavailable}
	}
	return elapsed, nil
}

func (b *Backend) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*rawResponse, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, b.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	send := func() (*rawResponse, error) {
		return b.send(op, req)
	}

	var res *rawResponse
	if b.breaker == nil {
		res, err = send()
	} else {
		res, err = b.breaker.Execute(send)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &APIError{Op: op, Message: "backend unavailable, try again shortly", Err: lib.ErrUnavailable}
		}
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendRequests.WithLabelValues(op, outcome).Inc()

	b.logger.Debug("Backend call",
		gecho.Field("op", op),
		gecho.Field("method", method),
		gecho.Field("path", path),
		gecho.Field("duration_ms", time.Since(start).Milliseconds()),
		gecho.Field("outcome", outcome),
	)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (b *Backend) send(op string, req *http.Request) (*rawResponse, error) {
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Message: err.Error(), Err: lib.ErrUnavailable}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: "failed to read response: " + err.Error(), Err: lib.ErrUnavailable}
	}

	var env envelope
	decodeErr := error(nil)
	if len(bytes.TrimSpace(data)) > 0 {
		decodeErr = json.Unmarshal(data, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			apiErr.Err = lib.ErrNotFound
		case resp.StatusCode >= 500:
			apiErr.Err = lib.ErrUnavailable
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: "malformed response: " + decodeErr.Error()}
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	return &rawResponse{status: resp.StatusCode, header: resp.Header, data: env.Data}, nil
}

func decodeData(op string, res *rawResponse, v any) error {
	if len(res.data) == 0 || string(res.data) == "null" {
		return nil
	}
	if err := json.Unmarshal(res.data, v); err != nil {
		return &APIError{Op: op, Status: res.status, Message: "malformed data: " + err.Error()}
	}
	return nil
}

// optionalProduct decodes the product echoed by a create or update. Some
// backends answer with an id or nothing, which is still a success.
func optionalProduct(res *rawResponse) *structs.Product {
	var product structs.Product
	if len(res.data) == 0 || json.Unmarshal(res.data, &product) != nil {
		return nil
	}
	if product.ID == 0 && product.Name == "" {
		return nil
	}
	return &product
}
