package model

import (
	"github.com/davranaff/coffee/internal/validation"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Base
	UserID      int64           `json:"user_id" db:"user_id"`
	Items       []CartItem      `json:"items" db:"-"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"-"`
}

type CartItem struct {
	Base
	CartID    int64    `json:"cart_id" db:"cart_id"`
	ProductID int64    `json:"product_id" db:"product_id"`
	Quantity  int      `json:"quantity" db:"quantity"`
	Product   *Product `json:"product,omitempty" db:"-"`
}

// Recalculate sets TotalAmount to the sum of price x quantity over the
// items that carry a product.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.TotalAmount = total
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

func (r *AddCartItemRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type UpdateCartItemRequest struct {
	ItemID   int64 `param:"item_id" json:"-" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

func (r *UpdateCartItemRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type CartItemRequest struct {
	ItemID int64 `param:"item_id" json:"-" validate:"required,gt=0"`
}

func (r *CartItemRequest) Validate() error {
	return validation.Validator().Struct(r)
}
