package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type AdminRepository struct {
	admins *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{admins: db.Collection(adminsCollection)}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AdminRepository) findOne(ctx context.Context, filter bson.M) (models.Admin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var a models.Admin
	if err := r.admins.FindOne(ctx, filter).Decode(&a); err != nil {
		if notFound(err) {
			return models.Admin{}, fmt.Errorf("%w: admin", ErrNotFound)
		}
		return models.Admin{}, err
	}
	return a, nil
}

// EnsureAdmin inserts the admin when no account with that email exists.
// It reports whether a new account was created.
func (r *AdminRepository) EnsureAdmin(ctx context.Context, admin models.Admin) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	res, err := r.admins.UpdateOne(ctx,
		bson.M{"email": admin.Email},
		bson.M{"$setOnInsert": admin},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}
