package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/database"
	"storefront/internal/orders"
	"storefront/internal/stock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRespondDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &orders.ValidationError{Field: "phone", Message: "phone is required"}, http.StatusBadRequest, `"field":"phone"`},
		{"shortage", &stock.ShortageError{ProductID: "p1", ProductName: "Frango", Available: 1, Requested: 3}, http.StatusConflict, `"available":1`},
		{"unavailable", fmt.Errorf("%w: Frango", cart.ErrProductUnavailable), http.StatusConflict, "unavailable"},
		{"transition", fmt.Errorf("%w: fulfilled -> pending", orders.ErrInvalidTransition), http.StatusConflict, "transition"},
		{"line", cart.ErrLineNotFound, http.StatusNotFound, "cart line not found"},
		{"order", fmt.Errorf("%w: %w", database.ErrNotFound, orders.ErrOrderNotFound), http.StatusNotFound, "order not found"},
		{"store", fmt.Errorf("%w: product x", database.ErrNotFound), http.StatusNotFound, "not found"},
		{"unexpected", errors.New("socket closed"), http.StatusInternalServerError, checkoutFailedMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondDomainError(c, "test", tc.err, checkoutFailedMessage)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestHandlePanicRespondsWithJSON(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		defer handlePanic(c, "GET /boom")
		panic("kaboom")
	})

	w := perform(r, http.MethodGet, "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	require.NoError(t, err)
	assert.Zero(t, page)
	assert.Zero(t, limit)

	page, limit, err = parsePaginationParams("3", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)
	assert.Equal(t, int64(20), limit)

	_, limit, err = parsePaginationParams("1", "500")
	require.NoError(t, err)
	assert.Equal(t, int64(maxPageLimit), limit)

	_, _, err = parsePaginationParams("0", "10")
	assert.ErrorIs(t, err, errInvalidPagination)
	_, _, err = parsePaginationParams("1", "x")
	assert.ErrorIs(t, err, errInvalidPagination)
}
