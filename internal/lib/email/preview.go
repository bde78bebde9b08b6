package email

import "github.com/shopspring/decimal"

// PreviewData holds sample data for every template, used to render previews
// and in tests.
var PreviewData = map[Template]any{
	TemplateVerification: VerificationData{
		FirstName: "Ada",
		Code:      "042917",
	},
	TemplateOrderConfirmation: OrderConfirmationData{
		FirstName: "Ada",
		OrderID:   1024,
		Items: []OrderLine{
			{Name: "Flat White", Quantity: 2, Price: decimal.RequireFromString("4.50")},
			{Name: "Almond Croissant", Quantity: 1, Price: decimal.RequireFromString("3.75")},
		},
		TotalAmount:     decimal.RequireFromString("12.75"),
		DeliveryAddress: "12 Roastery Lane",
	},
	TemplateOrderStatus: OrderStatusData{
		FirstName: "Ada",
		OrderID:   1024,
		Status:    "completed",
	},
}
