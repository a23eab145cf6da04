package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestGetCartOwner(t *testing.T) {
	t.Run("customer wins over guest session", func(t *testing.T) {
		c, _ := newTestContext(t)
		customerID := uuid.New()
		c.Set(middleware.JWTUserIDKey, customerID.String())
		c.Set(middleware.GuestSessionKey, "sess-abc")

		owner, err := getCartOwner(c)
		require.NoError(t, err)
		require.NotNil(t, owner.CustomerID)
		assert.Equal(t, customerID, *owner.CustomerID)
	})

	t.Run("guest session", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set(middleware.GuestSessionKey, "sess-abc")

		owner, err := getCartOwner(c)
		require.NoError(t, err)
		assert.Equal(t, "sess-abc", owner.SessionID)
	})

	t.Run("no identity", func(t *testing.T) {
		c, _ := newTestContext(t)
		_, err := getCartOwner(c)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	})
}

func TestBaseHandlerSuccess(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.Success(c, gin.H{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.SuccessWithMeta(c, []string{"a", "b"}, 42, 2, 20)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(42), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "out of stock",
			err:            shared.ErrOutOfStock,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeOutOfStock,
		},
		{
			name:           "concurrency conflict",
			err:            shared.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:           "unmapped business rule rejection",
			err:            shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "EMPTY_CART",
		},
		{
			name:           "plain error is internal",
			err:            assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			h := &BaseHandler{}

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	c, w := newTestContext(t)
	h := &BaseHandler{}

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}
