package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/models"
)

type ProductLister interface {
	List(ctx context.Context, f database.ProductFilter) ([]models.Product, error)
}

type ComplementLookup interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
	ComplementsFor(ctx context.Context, category models.Category) ([]models.Product, error)
}

/*
GET /products
- only available products
- category and search are optional
- pagination only when page or limit is given
*/
func GetProducts(products ProductLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		filter, ok := productFilterFromQuery(c, route)
		if !ok {
			return
		}
		filter.OnlyAvailable = true

		list, err := products.List(c.Request.Context(), filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logging.FromContext(c).Debug("products listed",
			zap.String("category", string(filter.Category)),
			zap.Int("count", len(list)),
		)
		c.JSON(http.StatusOK, gin.H{"data": list, "count": len(list)})
	}
}

// GET /products/:id/complements
func GetProductComplements(catalog ComplementLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id/complements"
		defer handlePanic(c, route)

		product, err := catalog.FindProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondDomainError(c, route, err, "db error")
			return
		}

		complements, err := catalog.ComplementsFor(c.Request.Context(), product.Category)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"productId": product.ID, "category": product.Category, "data": complements})
	}
}

func productFilterFromQuery(c *gin.Context, route string) (database.ProductFilter, bool) {
	var filter database.ProductFilter

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category")
			return filter, false
		}
		filter.Category = category
	}
	filter.Search = strings.TrimSpace(c.Query("search"))

	page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
		return filter, false
	}
	filter.Page, filter.Limit = page, limit
	return filter, true
}
