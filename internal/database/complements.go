package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// ComplementRepository keeps the category -> complement product links.
type ComplementRepository struct {
	links *mongo.Collection
}

func NewComplementRepository(db *mongo.Database) *ComplementRepository {
	return &ComplementRepository{links: db.Collection(categoryComplementsCollection)}
}

func linkedIDs(ctx context.Context, links *mongo.Collection, category models.Category) ([]string, error) {
	cursor, err := links.Find(ctx, bson.M{"category": bson.M{"$in": category.Labels()}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.CategoryComplement
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ComplementID)
	}
	return ids, nil
}

func (r *ComplementRepository) IDsFor(ctx context.Context, category models.Category) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return linkedIDs(ctx, r.links, category)
}

// Replace makes ids the complement set of category by inserting missing
// links and deleting removed ones.
func (r *ComplementRepository) Replace(ctx context.Context, category models.Category, ids []string) (added, removed int, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	current, err := linkedIDs(ctx, r.links, category)
	if err != nil {
		return 0, 0, err
	}
	toAdd, toRemove := DiffLinks(current, ids)

	if len(toRemove) > 0 {
		res, err := r.links.DeleteMany(ctx, bson.M{
			"category":     bson.M{"$in": category.Labels()},
			"complementId": bson.M{"$in": toRemove},
		})
		if err != nil {
			return 0, 0, err
		}
		removed = int(res.DeletedCount)
	}
	if len(toAdd) > 0 {
		docs := make([]any, 0, len(toAdd))
		for _, id := range toAdd {
			docs = append(docs, models.CategoryComplement{Category: category, ComplementID: id})
		}
		res, err := r.links.InsertMany(ctx, docs)
		if err != nil {
			return 0, removed, err
		}
		added = len(res.InsertedIDs)
	}
	return added, removed, nil
}

// DiffLinks returns the ids in want missing from current and the ids in
// current missing from want. Duplicates in want are ignored.
func DiffLinks(current, want []string) (toAdd, toRemove []string) {
	have := make(map[string]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		if id == "" || wanted[id] {
			continue
		}
		wanted[id] = true
		if !have[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if !wanted[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}
