package services

import (
	"context"
	"shopadmin_server/clients"
	"shopadmin_server/form"
	"shopadmin_server/structs"
	"time"
)

// ProductBackend is the part of the API client the catalog and drafts use
type ProductBackend interface {
	ListProducts(ctx context.Context) ([]structs.Product, error)
	GetProduct(ctx context.Context, id int64) (*structs.Product, error)
	CreateProduct(ctx context.Context, payload *form.Payload) (*structs.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload *form.Payload) (*structs.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderBackend is the part of the API client the order console uses
type OrderBackend interface {
	ListOrders(ctx context.Context) (*clients.OrderList, error)
	UpdateOrderStatus(ctx context.Context, id int64, update structs.StatusUpdate) error
}

type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}
