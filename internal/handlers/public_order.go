package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/orders"
)

type OrderSubmitter interface {
	Submit(ctx context.Context, sessionID string, form orders.Form) (orders.Receipt, error)
}

/* =========================
   CHECKOUT
========================= */

// POST /checkout
func Checkout(submitter OrderSubmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var form orders.Form
		if err := c.ShouldBindJSON(&form); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		receipt, err := submitter.Submit(c.Request.Context(), session, form)
		if err != nil {
			respondDomainError(c, route, err, checkoutFailedMessage)
			return
		}

		if len(receipt.StockFailures) > 0 {
			logging.FromContext(c).Warn("order placed with stock decrement failures",
				zap.String("orderId", receipt.Order.ID),
				zap.Strings("productIds", receipt.StockFailures),
			)
		}
		c.JSON(http.StatusCreated, receipt)
	}
}
