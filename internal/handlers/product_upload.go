package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/storage"
)

const maxMultipartMemory = 32 << 20

type ImageStore interface {
	SaveImage(filename string, size int64, src io.Reader) (string, error)
	Delete(url string) error
}

/*
=======================
  INPUT STRUCT
=======================
*/

// MultipartProductInput records which product fields were present in the
// form. An empty stock value means "stop tracking stock".
type MultipartProductInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          decimal.Decimal
	PriceSet       bool
	Category       models.Category
	CategorySet    bool
	Available      bool
	AvailableSet   bool
	Stock          *int
	StockSet       bool
	ImageURL       string
	ImageSet       bool
}

/*
=======================
  PARSER
=======================
*/

func parseMultipartProductRequest(c *gin.Context, images ImageStore) (MultipartProductInput, error) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		return MultipartProductInput{}, err
	}

	input := MultipartProductInput{}

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return MultipartProductInput{}, fmt.Errorf("price must be a number")
		}
		input.Price = parsed.Round(2)
		input.PriceSet = true
	}

	if value, ok := c.GetPostForm("category"); ok {
		parsed, err := models.ParseCategory(value)
		if err != nil {
			return MultipartProductInput{}, err
		}
		input.Category = parsed
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("available"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return MultipartProductInput{}, fmt.Errorf("available must be boolean")
		}
		input.Available = parsed
		input.AvailableSet = true
	}

	if value, ok := c.GetPostForm("stock"); ok {
		input.StockSet = true
		if value = strings.TrimSpace(value); value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return MultipartProductInput{}, fmt.Errorf("stock must be an integer")
			}
			input.Stock = &parsed
		}
	}

	file, err := c.FormFile("image")
	if err == nil {
		src, err := file.Open()
		if err != nil {
			return MultipartProductInput{}, err
		}
		defer src.Close()

		url, err := images.SaveImage(file.Filename, file.Size, src)
		if err != nil {
			return MultipartProductInput{}, err
		}
		input.ImageURL = url
		input.ImageSet = true
	} else if !errors.Is(err, http.ErrMissingFile) {
		return MultipartProductInput{}, err
	}

	return input, nil
}

/*
=======================
  HELPERS
=======================
*/

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, storage.ErrImageTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
