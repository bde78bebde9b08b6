package email

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sender is what the job handlers need from an email client.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, firstName, code string) error
	SendOrderConfirmationEmail(ctx context.Context, to string, data OrderConfirmationData) error
	SendOrderStatusEmail(ctx context.Context, to string, data OrderStatusData) error
}

type VerificationData struct {
	FirstName string
	Code      string
}

type OrderLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderConfirmationData struct {
	FirstName       string          `json:"first_name"`
	OrderID         int64           `json:"order_id"`
	Items           []OrderLine     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
}

type OrderStatusData struct {
	FirstName string `json:"first_name"`
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
}

func (c *Client) SendVerificationEmail(ctx context.Context, to, firstName, code string) error {
	return c.SendEmail(ctx, to, "Verify your Coffee Shop account", TemplateVerification, VerificationData{
		FirstName: firstName,
		Code:      code,
	})
}

func (c *Client) SendOrderConfirmationEmail(ctx context.Context, to string, data OrderConfirmationData) error {
	return c.SendEmail(ctx, to, fmt.Sprintf("Order #%d confirmed", data.OrderID), TemplateOrderConfirmation, data)
}

func (c *Client) SendOrderStatusEmail(ctx context.Context, to string, data OrderStatusData) error {
	return c.SendEmail(ctx, to, fmt.Sprintf("Order #%d is now %s", data.OrderID, data.Status), TemplateOrderStatus, data)
}
