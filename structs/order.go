package structs

import "time"

type Order struct {
	ID            int64         `json:"id"`
	OrderNumber   string        `json:"order_number"`
	CustomerName  string        `json:"customer_name"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Monetary breakdown, decimal strings exactly as the backend renders them
	Subtotal      string `json:"subtotal"`
	Tax           string `json:"tax"`
	ShippingFee   string `json:"shipping_fee"`
	Discount      string `json:"discount"`
	TotalAmount   string `json:"total_amount"`
	PaymentMethod string `json:"payment_method"`

	// Shipping address
	ShippingName         string `json:"shipping_name"`
	ShippingPhone        string `json:"shipping_phone"`
	ShippingEmail        string `json:"shipping_email"`
	ShippingAddressLine1 string `json:"shipping_address_line1"`
	ShippingAddressLine2 string `json:"shipping_address_line2,omitempty"`
	ShippingCity         string `json:"shipping_city"`
	ShippingState        string `json:"shipping_state"`
	ShippingPincode      string `json:"shipping_pincode"`
	ShippingCountry      string `json:"shipping_country"`

	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists the lifecycle in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// StatusUpdate is the body of a status transition request.
type StatusUpdate struct {
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	Comment       string        `json:"comment"`
}
