package mail

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/lifecycle"
)

// Notifier turns lifecycle business flags into SMTP emails. Non-mail flags
// (feature toggles, access scheduling) are left to their own collaborators
// and ignored here.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Dispatch(ctx context.Context, user *models.User, req lifecycle.UpdateRequest) error {
	_ = ctx
	var firstErr error
	for _, flag := range req.Flags {
		subject, body, ok := renderFlag(user, req, flag)
		if !ok {
			continue
		}
		if err := SendMail(user.Email, subject, body); err != nil {
			log.Errorf("[Mail] %s to %s failed: %v", flag, user.Email, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func renderFlag(user *models.User, req lifecycle.UpdateRequest, flag lifecycle.BusinessFlag) (subject, body string, ok bool) {
	switch flag {
	case lifecycle.FlagSendWelcomeEmail:
		return "Welcome to InkPress Premium",
			fmt.Sprintf("<p>Hi %s,</p><p>your subscription is active. Enjoy!</p>", user.Name), true
	case lifecycle.FlagSendPaymentConfirmation:
		return "Payment received",
			fmt.Sprintf("<p>Hi %s,</p><p>we received your payment. Your access has been extended.</p>", user.Name), true
	case lifecycle.FlagSendPaymentFailedEmail:
		subject = "Payment failed"
		body = fmt.Sprintf("<p>Hi %s,</p><p>your last payment failed. Please update your payment method.</p>", user.Name)
		if req.ChurnRisk == lifecycle.ChurnRiskCritical {
			body += "<p>Your subscription has been suspended until a payment succeeds.</p>"
		}
		return subject, body, true
	case lifecycle.FlagSendCancellationEmail:
		return "Subscription canceled",
			fmt.Sprintf("<p>Hi %s,</p><p>your subscription was canceled. You keep access until the end of the paid period.</p>", user.Name), true
	case lifecycle.FlagSendReactivationEmail:
		return "Welcome back",
			fmt.Sprintf("<p>Hi %s,</p><p>your subscription is active again.</p>", user.Name), true
	default:
		return "", "", false
	}
}
