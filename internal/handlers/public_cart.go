package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// CartSessionHeader carries the cart session id in both directions.
const CartSessionHeader = "X-Cart-Session"

type CartService interface {
	Get(ctx context.Context, sessionID string) (cart.State, error)
	AddItem(ctx context.Context, sessionID, productID string) (cart.State, error)
	AddConfigured(ctx context.Context, sessionID, productID string, picks []cart.ComplementPick, observation string) (cart.State, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (cart.State, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (cart.State, error)
	UpdateObservation(ctx context.Context, sessionID, lineID, text string) (cart.State, error)
	SetDeliveryMode(ctx context.Context, sessionID string, mode models.DeliveryMode) (cart.State, error)
	Clear(ctx context.Context, sessionID string) error
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type AddConfiguredItemRequest struct {
	ProductID   string                `json:"productId" binding:"required"`
	Complements []cart.ComplementPick `json:"complements" binding:"omitempty,dive"`
	Observation string                `json:"observation" binding:"max=280"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type UpdateObservationRequest struct {
	Observation string `json:"observation" binding:"max=280"`
}

type DeliveryModeRequest struct {
	DeliveryMode models.DeliveryMode `json:"deliveryMode" binding:"required"`
}

type cartResponse struct {
	SessionID    string              `json:"sessionId"`
	Lines        []models.CartLine   `json:"lines"`
	DeliveryMode models.DeliveryMode `json:"deliveryMode"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	DeliveryFee  decimal.Decimal     `json:"deliveryFee"`
	Total        decimal.Decimal     `json:"total"`
}

func newCartResponse(sessionID string, state cart.State, fee decimal.Decimal) cartResponse {
	lines := state.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	mode := state.Mode
	if mode == "" {
		mode = cart.DefaultMode
	}
	return cartResponse{
		SessionID:    sessionID,
		Lines:        lines,
		DeliveryMode: mode,
		Subtotal:     state.Total,
		DeliveryFee:  state.DeliveryFee(fee),
		Total:        state.GrandTotal(fee),
	}
}

// cartSession returns the session id sent by the client, issuing a new one
// when the header is missing. The id is always echoed back.
func cartSession(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(CartSessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(CartSessionHeader, id)
	return id
}

// GET /cart
func GetCart(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		session := cartSession(c)
		state, err := carts.Get(c.Request.Context(), session)
		if err != nil {
			respondDomainError(c, route, err, "could not load cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// POST /cart/items
func AddCartItem(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		state, err := carts.AddItem(c.Request.Context(), session, req.ProductID)
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// POST /cart/items/configured
func AddConfiguredCartItem(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items/configured"
		defer handlePanic(c, route)

		var req AddConfiguredItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		state, err := carts.AddConfigured(c.Request.Context(), session, req.ProductID, req.Complements, req.Observation)
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// DELETE /cart/products/:productId
func RemoveCartProduct(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/products/:productId"
		defer handlePanic(c, route)

		session := cartSession(c)
		state, err := carts.RemoveItem(c.Request.Context(), session, c.Param("productId"))
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// PATCH /cart/lines/:lineId
func UpdateCartLineQuantity(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/lines/:lineId"
		defer handlePanic(c, route)

		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		state, err := carts.UpdateQuantity(c.Request.Context(), session, c.Param("lineId"), *req.Quantity)
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// PATCH /cart/lines/:lineId/observation
func UpdateCartLineObservation(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/lines/:lineId/observation"
		defer handlePanic(c, route)

		var req UpdateObservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		state, err := carts.UpdateObservation(c.Request.Context(), session, c.Param("lineId"), req.Observation)
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// PUT /cart/delivery-mode
func SetCartDeliveryMode(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/delivery-mode"
		defer handlePanic(c, route)

		var req DeliveryModeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session := cartSession(c)
		state, err := carts.SetDeliveryMode(c.Request.Context(), session, req.DeliveryMode)
		if err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, state, fee))
	}
}

// DELETE /cart
func ClearCart(carts CartService, fee decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		session := cartSession(c)
		if err := carts.Clear(c.Request.Context(), session); err != nil {
			respondDomainError(c, route, err, "could not update cart")
			return
		}
		c.JSON(http.StatusOK, newCartResponse(session, cart.Empty(), fee))
	}
}
