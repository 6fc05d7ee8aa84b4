package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/models"
)

type SidesLister interface {
	ListSides(ctx context.Context) ([]models.Product, error)
}

type ComplementLinks interface {
	IDsFor(ctx context.Context, category models.Category) ([]string, error)
	Replace(ctx context.Context, category models.Category, ids []string) (added, removed int, err error)
}

type CategoryComplementsRequest struct {
	ComplementIDs []string `json:"complementIds" binding:"omitempty,dive,required"`
}

/*
GET /admin/api/complements
- every product of the complement pool, available or not
*/
func GetComplements(sides SidesLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/complements"
		defer handlePanic(c, route)

		list, err := sides.ListSides(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list})
	}
}

// GET /admin/api/category-complements/:category
func GetCategoryComplements(links ComplementLinks) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/category-complements/:category"
		defer handlePanic(c, route)

		category, err := models.ParseCategory(c.Param("category"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category")
			return
		}

		ids, err := links.IDsFor(c.Request.Context(), category)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category, "complementIds": ids})
	}
}

/*
PUT /admin/api/category-complements/:category
- replaces the whole set
- ids must belong to the complement pool
*/
func ReplaceCategoryComplements(links ComplementLinks, sides SidesLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/category-complements/:category"
		defer handlePanic(c, route)

		category, err := models.ParseCategory(c.Param("category"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category")
			return
		}

		var req CategoryComplementsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		pool, err := sides.ListSides(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		known := make(map[string]bool, len(pool))
		for _, p := range pool {
			known[p.ID] = true
		}
		for _, id := range req.ComplementIDs {
			if !known[id] {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown complement", "complementId": id})
				return
			}
		}

		added, removed, err := links.Replace(c.Request.Context(), category, req.ComplementIDs)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logging.FromContext(c).Info("category complements replaced",
			zap.String("category", string(category)),
			zap.Int("added", added),
			zap.Int("removed", removed),
		)
		c.JSON(http.StatusOK, gin.H{"category": category, "added": added, "removed": removed})
	}
}
