package email

// Template names an embedded HTML template (templates/<name>.html).
type Template string

const (
	TemplateVerification      Template = "verification"
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplateOrderStatus       Template = "order_status"
)
