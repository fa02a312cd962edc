package controllers

import (
	"net/http"

	"github.com/artisanmarket/storefront/internal/emails"
	"github.com/artisanmarket/storefront/pkg/logger"
)

// SendOrderStatusEmail exposes the order status email function over HTTP.
func SendOrderStatusEmail(sender *emails.Sender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sender == nil {
			unavailable(w, r, logg, "email")
			return
		}
		sender.ServeHTTP(w, r)
	}
}
