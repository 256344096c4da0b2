package services

import (
	"context"
	"shopadmin_server/clients"
	"shopadmin_server/config"
	"shopadmin_server/form"
	"shopadmin_server/structs"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

func testLogger() *gecho.Logger {
	return config.NewLogger(false)
}

type submission struct {
	productID int64
	payload   *form.Payload
}

// fakeBackend records calls and answers from its fields
type fakeBackend struct {
	mu sync.Mutex

	products    []structs.Product
	productsErr error
	product     *structs.Product
	productErr  error
	submitErr   error
	deleteErr   error
	deleted     []int64
	submissions []submission
	listCalls   int

	// when set, CreateProduct reports on submitStarted and waits for submitRelease
	submitStarted chan struct{}
	submitRelease chan struct{}

	orders       []structs.Order
	etag         string
	ordersErr    error
	orderCalls   int
	statusErr    error
	updates      []structs.StatusUpdate
	updatedIDs   []int64
	listOrdersFn func() (*clients.OrderList, error)

	pingErr error
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]structs.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return append([]structs.Product(nil), f.products...), nil
}

func (f *fakeBackend) GetProduct(ctx context.Context, id int64) (*structs.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.productErr != nil {
		return nil, f.productErr
	}
	p := *f.product
	return &p, nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, payload *form.Payload) (*structs.Product, error) {
	f.mu.Lock()
	f.submissions = append(f.submissions, submission{payload: payload})
	started, release, err := f.submitStarted, f.submitRelease, f.submitErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &structs.Product{ID: 100}, nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, id int64, payload *form.Payload) (*structs.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission{productID: id, payload: payload})
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return nil, nil
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ListOrders(ctx context.Context) (*clients.OrderList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls++
	if f.listOrdersFn != nil {
		return f.listOrdersFn()
	}
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return &clients.OrderList{Orders: append([]structs.Order(nil), f.orders...), ETag: f.etag}, nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id int64, update structs.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.updatedIDs = append(f.updatedIDs, id)
	f.updates = append(f.updates, update)
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = update.Status
		}
	}
	return nil
}

func (f *fakeBackend) Ping(ctx context.Context) (time.Duration, error) {
	return time.Millisecond, f.pingErr
}

func (f *fakeBackend) calls() (orders int, products int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderCalls, f.listCalls
}
