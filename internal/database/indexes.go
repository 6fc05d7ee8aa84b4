package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{
			collection: productsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "category", Value: 1}, {Key: "available", Value: 1}, {Key: "name", Value: 1}},
					Options: options.Index().SetName("category_available_name"),
				},
				{
					Keys:    bson.D{{Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("createdAt_desc"),
				},
			},
		},
		{
			collection: ordersCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
					Options: options.Index().SetName("status_createdAt"),
				},
			},
		},
		{
			collection: categoryComplementsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "category", Value: 1}, {Key: "complementId", Value: 1}},
					Options: options.Index().SetName("category_complement_unique").SetUnique(true),
				},
			},
		},
		{
			collection: adminsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("email_unique").SetUnique(true),
				},
			},
		},
		{
			collection: refreshTokensCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "tokenHash", Value: 1}},
					Options: options.Index().SetName("tokenHash_unique").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "expiresAt", Value: 1}},
					Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
				},
			},
		},
	}
}

// EnsureIndexes creates every index and keeps going past failures; the
// returned error names the collections that failed.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	log := logger.Named("indexes")
	var failed []string
	for _, plan := range indexPlan() {
		createCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		names, err := db.Collection(plan.collection).Indexes().CreateMany(createCtx, plan.models)
		cancel()
		if err != nil {
			log.Warn("index creation failed", zap.String("collection", plan.collection), zap.Error(err))
			failed = append(failed, plan.collection)
			continue
		}
		log.Info("indexes ready", zap.String("collection", plan.collection), zap.Strings("names", names))
	}
	if len(failed) > 0 {
		return fmt.Errorf("index creation failed for %v", failed)
	}
	return nil
}
