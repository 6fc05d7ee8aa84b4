package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `bson:"_id" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Price       decimal.Decimal `bson:"price" json:"price"`
	ImageURL    string          `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Available   bool            `bson:"available" json:"available"`
	Stock       *int            `bson:"stock,omitempty" json:"stock,omitempty"` // nil means untracked
	InStock     bool            `bson:"-" json:"inStock"`
	Category    Category        `bson:"category" json:"category"`
	IsDeleted   bool            `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time      `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
}

// TracksStock reports whether the product declares a stock count.
func (p Product) TracksStock() bool {
	return p.Stock != nil
}

// HasStock is true for untracked products and for tracked ones with units left.
func (p Product) HasStock() bool {
	return p.Stock == nil || *p.Stock > 0
}

// Orderable is the menu rule for adding a product to a cart.
func (p Product) Orderable() bool {
	return p.Available && !p.IsDeleted && p.HasStock()
}

func IntPtr(v int) *int {
	return &v
}
