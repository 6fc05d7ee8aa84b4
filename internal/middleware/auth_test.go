package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func guardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/api/me", AdminAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": AdminID(c), "email": AdminEmail(c)})
	})
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/api/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuthAcceptsIssuedToken(t *testing.T) {
	token, err := IssueAdminToken(secret, "admin-1", "owner@example.com", time.Minute, time.Now())
	require.NoError(t, err)

	rec := call(guardedRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"admin-1","email":"owner@example.com"}`, rec.Body.String())
}

func TestAdminAuthRejects(t *testing.T) {
	expired, err := IssueAdminToken(secret, "admin-1", "a@b.c", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := IssueAdminToken("other-secret", "admin-1", "a@b.c", time.Minute, time.Now())
	require.NoError(t, err)
	customer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": "customer",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	r := guardedRouter()
	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+expired).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+foreign).Code)
	assert.Equal(t, http.StatusForbidden, call(r, "Bearer "+customer).Code)
}
