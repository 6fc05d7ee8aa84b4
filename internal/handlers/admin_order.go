package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/orders"
)

type OrderBoard interface {
	List(ctx context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	Delete(ctx context.Context, id string) error
}

type StatusTransitioner interface {
	Transition(ctx context.Context, id string, target models.OrderStatus) (orders.StatusChange, error)
}

type StatsProvider interface {
	Stats(ctx context.Context) (orders.Stats, error)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GET /admin/api/orders
func GetOrders(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		var status models.OrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			parsed, err := models.ParseOrderStatus(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			status = parsed
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		list, err := board.List(c.Request.Context(), status, page, limit)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		counts, err := board.CountByStatus(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": list, "counts": counts})
	}
}

// PATCH /admin/api/orders/:id/status
func UpdateOrderStatus(statuses StatusTransitioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		change, err := statuses.Transition(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondDomainError(c, route, err, "could not update order")
			return
		}

		logging.FromContext(c).Info("order status changed",
			zap.String("orderId", change.Order.ID),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.Order.Status)),
			zap.String("adminId", middleware.AdminID(c)),
		)
		c.JSON(http.StatusOK, change)
	}
}

// DELETE /admin/api/orders/:id
func DeleteOrder(board OrderBoard) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		if err := board.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondDomainError(c, route, err, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

// GET /admin/api/dashboard
func GetDashboard(stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/dashboard"
		defer handlePanic(c, route)

		s, err := stats.Stats(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, s)
	}
}
