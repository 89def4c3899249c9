package sendgrid

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail for settled orders.
type EmailService interface {
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error
	GetSendGridClient() *sg.Client
}

type emailService struct {
	client    *sg.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sg.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

func (e *emailService) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	if to == "" {
		return fmt.Errorf("order %s has no recipient", order.ID)
	}

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail(order.ShippingAddress.FullName, to))
	personalization.Subject = fmt.Sprintf("Order %s confirmed", shortID(order))

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(e.fromName, e.fromEmail))
	message.AddPersonalizations(personalization)
	message.AddContent(
		mail.NewContent("text/plain", plainBody(order)),
		mail.NewContent("text/html", htmlBody(order)),
	)

	resp, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", resp.StatusCode)
	}

	return nil
}

func (e *emailService) GetSendGridClient() *sg.Client {
	return e.client
}

func shortID(order *models.Order) string {
	return strings.ToUpper(order.ID.String()[:8])
}

func plainBody(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Thanks for your order %s.\n\n", shortID(order))

	for _, item := range order.Items {
		fmt.Fprintf(&b, "%d x %s  %s\n", item.Quantity, item.Name, item.UnitPrice.StringFixed(2))
	}

	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "\nDiscount: -%s", order.Discount.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))

	return b.String()
}

func htmlBody(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thanks for your order %s</h2><ul>", shortID(order))

	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>%d &times; %s &mdash; %s</li>",
			item.Quantity, html.EscapeString(item.Name), item.UnitPrice.StringFixed(2))
	}

	b.WriteString("</ul>")

	if order.Discount.IsPositive() {
		fmt.Fprintf(&b, "<p>Discount: -%s</p>", order.Discount.StringFixed(2))
	}

	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", order.TotalPrice.StringFixed(2))

	return b.String()
}
