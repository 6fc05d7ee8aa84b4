package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/models"
)

type ProductStore interface {
	List(ctx context.Context, f database.ProductFilter) ([]models.Product, error)
	Insert(ctx context.Context, p models.Product) error
	Update(ctx context.Context, id string, u database.ProductUpdate) (models.Product, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	SoftDelete(ctx context.Context, id string, at time.Time) (models.Product, error)
}

// ProductUpdateRequest is the JSON form of a partial product update.
type ProductUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *models.Category `json:"category"`
	Available   *bool            `json:"available"`
	Stock       *int             `json:"stock"`
	ClearStock  bool             `json:"clearStock"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

/* =======================
   LIST
======================= */

func GetAllProducts(products ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		filter, ok := productFilterFromQuery(c, route)
		if !ok {
			return
		}

		list, err := products.List(c.Request.Context(), filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(products ProductStore, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondWithError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartProductRequest(c, images)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		reject := func(message string) {
			discardUpload(c, images, input)
			respondWithError(c, http.StatusBadRequest, route, message)
		}

		if !input.NameSet || input.Name == "" {
			reject("name required")
			return
		}
		if !input.PriceSet || input.Price.IsNegative() {
			reject("invalid price")
			return
		}
		if !input.CategorySet || input.Category == "" {
			reject("category required")
			return
		}
		if input.Stock != nil && *input.Stock < 0 {
			reject("stock must be zero or greater")
			return
		}

		available := true
		if input.AvailableSet {
			available = input.Available
		}

		product := models.Product{
			ID:          uuid.NewString(),
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
			Available:   available,
			Stock:       input.Stock,
			Category:    input.Category,
			CreatedAt:   time.Now().UTC(),
		}
		product.InStock = product.HasStock()

		if err := products.Insert(c.Request.Context(), product); err != nil {
			discardUpload(c, images, input)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logging.FromContext(c).Info("product created",
			zap.String("productId", product.ID),
			zap.String("category", string(product.Category)),
		)
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(products ProductStore, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		removeImage := false
		if removeRaw := strings.TrimSpace(c.Query("removeImage")); removeRaw != "" {
			parsed, err := strconv.ParseBool(removeRaw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "removeImage must be boolean")
				return
			}
			removeImage = parsed
		}

		var (
			update   database.ProductUpdate
			uploaded MultipartProductInput
		)
		if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			input, err := parseMultipartProductRequest(c, images)
			if err != nil {
				respondMultipartError(c, err)
				return
			}
			uploaded = input
			update = updateFromMultipart(input)
		} else {
			var req ProductUpdateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondValidationError(c, err)
				return
			}
			update = updateFromJSON(req)
		}

		if removeImage && update.ImageURL == nil {
			empty := ""
			update.ImageURL = &empty
		}

		if msg := validateProductUpdate(update); msg != "" {
			discardUpload(c, images, uploaded)
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}

		before, err := products.Update(c.Request.Context(), c.Param("id"), update)
		if err != nil {
			discardUpload(c, images, uploaded)
			respondDomainError(c, route, err, "db error")
			return
		}

		if update.ImageURL != nil && before.ImageURL != "" && before.ImageURL != *update.ImageURL {
			if err := images.Delete(before.ImageURL); err != nil {
				logging.FromContext(c).Warn("old product image not removed",
					zap.String("productId", before.ID), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "product updated", "id": before.ID})
	}
}

func updateFromMultipart(input MultipartProductInput) database.ProductUpdate {
	var u database.ProductUpdate
	if input.NameSet {
		u.Name = &input.Name
	}
	if input.DescriptionSet {
		u.Description = &input.Description
	}
	if input.PriceSet {
		u.Price = &input.Price
	}
	if input.CategorySet {
		u.Category = &input.Category
	}
	if input.AvailableSet {
		u.Available = &input.Available
	}
	if input.StockSet {
		if input.Stock == nil {
			u.ClearStock = true
		} else {
			u.Stock = input.Stock
		}
	}
	if input.ImageSet {
		u.ImageURL = &input.ImageURL
	}
	return u
}

func updateFromJSON(req ProductUpdateRequest) database.ProductUpdate {
	u := database.ProductUpdate{
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   req.Available,
		Stock:       req.Stock,
		ClearStock:  req.ClearStock,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		u.Name = &name
	}
	if u.Price != nil {
		rounded := u.Price.Round(2)
		u.Price = &rounded
	}
	return u
}

func validateProductUpdate(u database.ProductUpdate) string {
	switch {
	case u.Name != nil && *u.Name == "":
		return "name required"
	case u.Price != nil && u.Price.IsNegative():
		return "invalid price"
	case u.Category != nil && *u.Category == "":
		return "category required"
	case u.Stock != nil && *u.Stock < 0:
		return "stock must be zero or greater"
	}
	return ""
}

/* =======================
   AVAILABILITY
======================= */

func SetProductAvailability(products ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/products/:id/availability"
		defer handlePanic(c, route)

		var req AvailabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := products.SetAvailability(c.Request.Context(), c.Param("id"), *req.Available); err != nil {
			respondDomainError(c, route, err, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "available": *req.Available})
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(products ProductStore, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		existing, err := products.SoftDelete(c.Request.Context(), c.Param("id"), time.Now().UTC())
		if err != nil && existing.ID == "" {
			respondDomainError(c, route, err, "db error")
			return
		}
		if err != nil {
			logging.FromContext(c).Warn("product deleted with leftover complement links",
				zap.String("productId", existing.ID), zap.Error(err))
		}

		if existing.ImageURL != "" {
			if err := images.Delete(existing.ImageURL); err != nil {
				logging.FromContext(c).Warn("product image delete failed",
					zap.String("productId", existing.ID), zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}

// discardUpload removes an image saved while parsing a request that was then
// rejected.
func discardUpload(c *gin.Context, images ImageStore, input MultipartProductInput) {
	if !input.ImageSet || input.ImageURL == "" {
		return
	}
	if err := images.Delete(input.ImageURL); err != nil {
		logging.FromContext(c).Warn("discarded upload not removed", zap.String("url", input.ImageURL), zap.Error(err))
	}
}
