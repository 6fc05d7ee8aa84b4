package models

import "time"

// RefreshToken is a signed-in admin session. Only the hash of the token is stored.
type RefreshToken struct {
	ID        string     `bson:"_id" json:"id"`
	AdminID   string     `bson:"adminId" json:"adminId"`
	TokenHash string     `bson:"tokenHash" json:"-"`
	ExpiresAt time.Time  `bson:"expiresAt" json:"expiresAt"`
	Revoked   bool       `bson:"revoked" json:"revoked"`
	RevokedAt *time.Time `bson:"revokedAt,omitempty" json:"revokedAt,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}
