package model

import (
	"github.com/davranaff/coffee/internal/validation"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransitionTo reports whether staff may move an order from s to next.
// Completed and cancelled orders are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsCancellable reports whether the owner may still cancel the order.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	Base
	UserID          int64           `json:"user_id" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	DeliveryAddress *string         `json:"delivery_address" db:"delivery_address"`
	ContactPhone    *string         `json:"contact_phone" db:"contact_phone"`
	Items           []OrderItem     `json:"items" db:"-"`
}

// OrderItem keeps the product name and price as they were when the order
// was placed. ProductID becomes nil once the product is deleted.
type OrderItem struct {
	Base
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   *int64          `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

type CreateOrderRequest struct {
	DeliveryAddress *string `json:"delivery_address" validate:"omitempty,max=500"`
	ContactPhone    *string `json:"contact_phone" validate:"omitempty,max=32"`
}

func (r *CreateOrderRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type ListOrdersRequest struct {
	Pagination
}

func (r *ListOrdersRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type ListAllOrdersRequest struct {
	Pagination
	Status *OrderStatus `query:"status" validate:"omitempty,oneof=pending processing completed cancelled"`
}

func (r *ListAllOrdersRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type UpdateOrderStatusRequest struct {
	ID     int64       `param:"id" json:"-" validate:"required,gt=0"`
	Status OrderStatus `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	return validation.Validator().Struct(r)
}
