package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DanielKrohn/InkPress/app/controllers"
	"github.com/DanielKrohn/InkPress/internal/pkg/constants"
)

type WebhookRouter struct {
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	// Signature-verified in the controller, no CSRF and no rate limiting.
	app.Post(constants.PaymentWebhookRoute, controllers.HandlePaymentWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
