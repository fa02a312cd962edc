package emails

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/artisanmarket/storefront/pkg/currency"
	"github.com/artisanmarket/storefront/pkg/emailfn"
	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/types"
)

const displayDate = "January 2, 2006"

//go:embed templates/order_status.html
var orderStatusHTML string

var orderStatusTemplate = template.Must(template.New("order_status").Parse(orderStatusHTML))

// statusCopy is the per-status subject line, banner and colour.
type statusCopy struct {
	subject string
	heading string
	message string
	color   template.CSS
}

func copyFor(status enums.OrderStatus, orderID string, details *emailfn.OrderDetails) (statusCopy, bool) {
	switch status {
	case enums.OrderStatusProcessing:
		return statusCopy{
			subject: fmt.Sprintf("Order %s is Being Processed", orderID),
			heading: "Your Order is Being Processed",
			message: "We've received your order and are preparing your items for shipment.",
			color:   "#4A7C88",
		}, true
	case enums.OrderStatusShipped:
		msg := "Your order has been shipped and is on its way to you."
		if details != nil && !details.EstimatedDelivery.IsZero() {
			msg += " Expected delivery: " + details.EstimatedDelivery.Format(displayDate)
		}
		return statusCopy{
			subject: fmt.Sprintf("Order %s Has Been Shipped", orderID),
			heading: "Your Order is On Its Way!",
			message: msg,
			color:   "#8B6F47",
		}, true
	case enums.OrderStatusDelivered:
		return statusCopy{
			subject: fmt.Sprintf("Order %s Has Been Delivered", orderID),
			heading: "Your Order Has Been Delivered",
			message: "Your order has been successfully delivered. We hope you love your purchase!",
			color:   "#6B9080",
		}, true
	case enums.OrderStatusCancelled:
		return statusCopy{
			subject: fmt.Sprintf("Order %s Has Been Cancelled", orderID),
			heading: "Your Order Has Been Cancelled",
			message: "Your order has been cancelled. If you have any questions, please contact our support team.",
			color:   "#C1666B",
		}, true
	default:
		return statusCopy{}, false
	}
}

type itemView struct {
	Name      string
	Variation string
	Quantity  int
	Price     string
}

type summaryView struct {
	Subtotal string
	Shipping string
	Tax      string
	Total    string
}

type emailView struct {
	Subject   string
	Heading   string
	Message   string
	Color     template.CSS
	OrderID   string
	Status    string
	OrderDate string
	Items     []itemView
	Summary   *summaryView
	Address   *types.ShippingAddress
	Year      int
}

func render(c statusCopy, req emailfn.Request, status enums.OrderStatus, now time.Time) (string, error) {
	view := emailView{
		Subject: c.subject,
		Heading: c.heading,
		Message: c.message,
		Color:   c.color,
		OrderID: req.OrderID,
		Status:  status.String(),
		Year:    now.Year(),
	}

	if d := req.OrderDetails; d != nil {
		if !d.CreatedAt.IsZero() {
			view.OrderDate = d.CreatedAt.Format(displayDate)
		}
		for _, item := range d.Items {
			view.Items = append(view.Items, itemView{
				Name:      item.Name,
				Variation: item.SelectedVariation.Label(),
				Quantity:  item.Quantity,
				Price:     currency.Format(item.Price),
			})
		}
		if !d.Subtotal.IsZero() {
			summary := &summaryView{
				Subtotal: currency.Format(d.Subtotal),
				Total:    currency.Format(d.Total),
			}
			if !d.Shipping.IsZero() {
				summary.Shipping = currency.Format(d.Shipping)
			}
			if !d.Tax.IsZero() {
				summary.Tax = currency.Format(d.Tax)
			}
			view.Summary = summary
		}
		if strings.TrimSpace(d.ShippingAddress.Address) != "" {
			addr := d.ShippingAddress
			view.Address = &addr
		}
	}

	var buf bytes.Buffer
	if err := orderStatusTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render order status email: %w", err)
	}
	return buf.String(), nil
}
