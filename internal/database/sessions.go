package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// SessionRepository stores admin refresh tokens by hash.
type SessionRepository struct {
	tokens *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{tokens: db.Collection(refreshTokensCollection)}
}

func (r *SessionRepository) Create(ctx context.Context, token models.RefreshToken) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

// FindActive returns the unrevoked token with the given hash.
func (r *SessionRepository) FindActive(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var token models.RefreshToken
	err := r.tokens.FindOne(ctx, bson.M{"tokenHash": tokenHash, "revoked": false}).Decode(&token)
	if err != nil {
		if notFound(err) {
			return models.RefreshToken{}, fmt.Errorf("%w: refresh token", ErrNotFound)
		}
		return models.RefreshToken{}, err
	}
	return token, nil
}

// Revoke revokes the active token with the given hash and reports whether
// one was found.
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.tokens.UpdateOne(ctx,
		bson.M{"tokenHash": tokenHash, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true, "revokedAt": at}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
