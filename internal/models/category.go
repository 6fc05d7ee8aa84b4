package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Category groups products on the menu. CategorySides doubles as the
// complement pool.
type Category string

const (
	CategoryMeals    Category = "meals"
	CategoryDrinks   Category = "drinks"
	CategoryDesserts Category = "desserts"
	CategorySides    Category = "sides"
)

var Categories = []Category{CategoryMeals, CategoryDrinks, CategoryDesserts, CategorySides}

var categoryAliases = map[string]string{
	"meals":           string(CategoryMeals),
	"marmitas":        string(CategoryMeals),
	"drinks":          string(CategoryDrinks),
	"bebidas":         string(CategoryDrinks),
	"desserts":        string(CategoryDesserts),
	"sobremesas":      string(CategoryDesserts),
	"sides":           string(CategorySides),
	"acompanhamentos": string(CategorySides),
}

func ParseCategory(raw string) (Category, error) {
	value, ok := normalizeLabel(raw, categoryAliases)
	if !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return Category(value), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	if isBlank(text) {
		*c = ""
		return nil
	}
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Category) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, err := decodeLabel(t, data)
	if err != nil {
		return err
	}
	return c.UnmarshalText([]byte(raw))
}

// Labels lists the canonical value and its legacy spellings for store filters.
func (c Category) Labels() []string {
	return labelsFor(string(c), categoryAliases)
}

// CategoryComplement links a menu category to a product from the sides pool.
// Complements are resolved per category, never per product.
type CategoryComplement struct {
	Category     Category `bson:"category" json:"category"`
	ComplementID string   `bson:"complementId" json:"complementId"`
}
