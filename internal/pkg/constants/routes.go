package constants

// Static route constants
const (
	PaymentWebhookRoute = "/webhooks/payments"
	APIRoute            = "/api"
	APIV1Route          = "/v1"
	AdminRoute          = "/admin"
)
