package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

type AdminAccounts interface {
	FindByEmail(ctx context.Context, email string) (models.Admin, error)
	FindByID(ctx context.Context, id string) (models.Admin, error)
}

type AdminSessions interface {
	Create(ctx context.Context, token models.RefreshToken) error
	FindActive(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error)
}

type AuthSettings struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type issuedTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// POST /admin/login
func AdminLogin(accounts AdminAccounts, sessions AdminSessions, settings AuthSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		admin, err := accounts.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			logging.FromContext(c).Info("admin login rejected", zap.String("email", email))
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		tokens, err := issueTokens(c.Request.Context(), sessions, admin, settings, time.Now().UTC())
		if err != nil {
			logging.FromContext(c).Error("admin token generation failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		logging.FromContext(c).Info("admin login succeeded", zap.String("adminId", admin.ID))
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"admin":        admin,
		})
	}
}

// POST /admin/refresh rotates the refresh token.
func AdminRefresh(accounts AdminAccounts, sessions AdminSessions, settings AuthSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/refresh"
		defer handlePanic(c, route)

		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		now := time.Now().UTC()
		hash := hashToken(strings.TrimSpace(req.RefreshToken))

		token, err := sessions.FindActive(ctx, hash)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		if now.After(token.ExpiresAt) {
			_, _ = sessions.Revoke(ctx, hash, now)
			respondWithError(c, http.StatusUnauthorized, route, "refresh token expired")
			return
		}

		admin, err := accounts.FindByID(ctx, token.AdminID)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "admin not found")
			return
		}

		revoked, err := sessions.Revoke(ctx, hash, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !revoked {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		tokens, err := issueTokens(ctx, sessions, admin, settings, now)
		if err != nil {
			logging.FromContext(c).Error("admin token refresh failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}
		c.JSON(http.StatusOK, tokens)
	}
}

// POST /admin/logout
func AdminLogout(sessions AdminSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/logout"
		defer handlePanic(c, route)

		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		revoked, err := sessions.Revoke(c.Request.Context(), hashToken(strings.TrimSpace(req.RefreshToken)), time.Now().UTC())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !revoked {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// GET /admin/api/me
func AdminMe(accounts AdminAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/me"
		defer handlePanic(c, route)

		admin, err := accounts.FindByID(c.Request.Context(), middleware.AdminID(c))
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondWithError(c, http.StatusUnauthorized, route, "admin not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin": admin})
	}
}

func issueTokens(ctx context.Context, sessions AdminSessions, admin models.Admin, settings AuthSettings, now time.Time) (issuedTokens, error) {
	accessToken, err := middleware.IssueAdminToken(settings.Secret, admin.ID, admin.Email, settings.AccessTTL, now)
	if err != nil {
		return issuedTokens{}, err
	}

	plainRefresh, err := generateRefreshString()
	if err != nil {
		return issuedTokens{}, err
	}

	refresh := models.RefreshToken{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: now.Add(settings.RefreshTTL),
		CreatedAt: now,
	}
	if err := sessions.Create(ctx, refresh); err != nil {
		return issuedTokens{}, err
	}

	return issuedTokens{
		AccessToken:  accessToken,
		RefreshToken: plainRefresh,
		ExpiresIn:    int64(settings.AccessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateRefreshString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
