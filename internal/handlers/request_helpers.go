package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/orders"
	"storefront/internal/stock"
)

const checkoutFailedMessage = "could not process order, try again"

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.FromContext(c).Error("panic recovered", zap.String("handler", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log := logging.FromContext(c).With(zap.String("handler", route), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		log.Error(message)
	} else {
		log.Debug(message)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondDomainError maps errors from the cart, stock, order and store layers
// to a response. fallback is the message sent for unexpected errors.
func respondDomainError(c *gin.Context, route string, err error, fallback string) {
	var validation *orders.ValidationError
	var shortage *stock.ShortageError

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": validation.Message,
			"field": validation.Field,
		})
	case errors.As(err, &shortage):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":       shortage.Reason(),
			"productId":   shortage.ProductID,
			"productName": shortage.ProductName,
			"available":   shortage.Available,
			"requested":   shortage.Requested,
		})
	case errors.Is(err, orders.ErrEmptyCart):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.Is(err, cart.ErrSessionRequired):
		respondWithError(c, http.StatusBadRequest, route, "cart session is required")
	case errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, cart.ErrComplementNotAllowed),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrStatusConflict):
		respondWithError(c, http.StatusConflict, route, err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondWithError(c, http.StatusNotFound, route, "cart line not found")
	case errors.Is(err, orders.ErrOrderNotFound):
		respondWithError(c, http.StatusNotFound, route, "order not found")
	case errors.Is(err, database.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, "not found")
	default:
		logging.FromContext(c).Error("request failed", zap.String("handler", route), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
