package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// ProductFilter narrows List. The zero value lists every non-deleted product.
type ProductFilter struct {
	Category      models.Category
	OnlyAvailable bool
	Search        string
	Page, Limit   int64
}

// ProductUpdate is a partial update; nil fields are left unchanged.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Available   *bool
	Category    *models.Category
	// Stock replaces the count; ClearStock makes the product untracked.
	Stock      *int
	ClearStock bool
}

func (u ProductUpdate) document() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.ImageURL != nil {
		set["imageUrl"] = *u.ImageURL
	}
	if u.Available != nil {
		set["available"] = *u.Available
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Stock != nil && !u.ClearStock {
		set["stock"] = *u.Stock
	}

	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if u.ClearStock {
		doc["$unset"] = bson.M{"stock": ""}
	}
	return doc
}

type ProductRepository struct {
	products    *mongo.Collection
	complements *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		products:    db.Collection(productsCollection),
		complements: db.Collection(categoryComplementsCollection),
	}
}

func notDeleted() bson.M {
	return bson.M{"isDeleted": bson.M{"$ne": true}}
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	if f.Category != "" {
		filter["category"] = bson.M{"$in": f.Category.Labels()}
	}
	if f.OnlyAvailable {
		filter["available"] = true
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Page > 0 && f.Limit > 0 {
		opts.SetSkip((f.Page - 1) * f.Limit).SetLimit(f.Limit)
	}
	return r.find(ctx, filter, opts)
}

func (r *ProductRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].InStock = products[i].HasStock()
	}
	return products, nil
}

// FindProduct returns a non-deleted product.
func (r *ProductRepository) FindProduct(ctx context.Context, id string) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["_id"] = id

	var p models.Product
	if err := r.products.FindOne(ctx, filter).Decode(&p); err != nil {
		if notFound(err) {
			return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return models.Product{}, err
	}
	p.InStock = p.HasStock()
	return p, nil
}

func (r *ProductRepository) Insert(ctx context.Context, p models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.products.InsertOne(ctx, p)
	return err
}

// Update applies u and returns the product as it was before the update.
func (r *ProductRepository) Update(ctx context.Context, id string, u ProductUpdate) (models.Product, error) {
	doc := u.document()
	if len(doc) == 0 {
		return r.FindProduct(ctx, id)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["_id"] = id

	var before models.Product
	err := r.products.FindOneAndUpdate(ctx, filter, doc).Decode(&before)
	if err != nil {
		if notFound(err) {
			return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return models.Product{}, err
	}
	return before, nil
}

func (r *ProductRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	_, err := r.Update(ctx, id, ProductUpdate{Available: &available})
	return err
}

// SoftDelete marks the product deleted and returns it so its image can be
// removed.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string, at time.Time) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["_id"] = id
	update := bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at, "available": false}}

	var p models.Product
	if err := r.products.FindOneAndUpdate(ctx, filter, update).Decode(&p); err != nil {
		if notFound(err) {
			return models.Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return models.Product{}, err
	}
	if _, err := r.complements.DeleteMany(ctx, bson.M{"complementId": id}); err != nil {
		return p, fmt.Errorf("unlink complement %s: %w", id, err)
	}
	return p, nil
}

// DecrementStock subtracts quantity from a tracked product, floored at zero,
// in a single update. Untracked products are reported as not found.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, quantity int) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$type": "number"},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stock", Value: bson.D{
				{Key: "$max", Value: bson.A{0, bson.D{{Key: "$subtract", Value: bson.A{"$stock", quantity}}}}},
			}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"stock": 1})

	var out struct {
		Stock int `bson:"stock"`
	}
	if err := r.products.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		if notFound(err) {
			return 0, fmt.Errorf("%w: tracked product %s", ErrNotFound, productID)
		}
		return 0, err
	}
	return out.Stock, nil
}

// ListSides lists every non-deleted product of the complement pool.
func (r *ProductRepository) ListSides(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := notDeleted()
	filter["category"] = bson.M{"$in": models.CategorySides.Labels()}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// ComplementsFor resolves category -> linked complement ids -> available
// products with stock absent or above zero, sorted by name.
func (r *ProductRepository) ComplementsFor(ctx context.Context, category models.Category) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := linkedIDs(ctx, r.complements, category)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	filter := bson.M{
		"_id":       bson.M{"$in": ids},
		"available": true,
		"isDeleted": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"stock": bson.M{"$exists": false}},
			bson.M{"stock": nil},
			bson.M{"stock": bson.M{"$gt": 0}},
		},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}
