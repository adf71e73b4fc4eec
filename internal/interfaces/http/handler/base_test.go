package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	c.Set(middleware.RequestIDKey, "req-1")

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestBaseHandlerPage(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.Page(c, []string{"a", "b"}, 45, shared.Filter{Page: 2, PageSize: 20})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodPost, "/")

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "not found",
			err:          shared.ErrNotFound,
			expectedCode: http.StatusNotFound,
			expectedErr:  "NOT_FOUND",
		},
		{
			name:         "conflict keeps domain code",
			err:          shared.ErrAlreadyExists.WithMessage("Till P01 exists"),
			expectedCode: http.StatusConflict,
			expectedErr:  "ALREADY_EXISTS",
		},
		{
			name:         "forbidden state",
			err:          shared.ErrInvalidState,
			expectedCode: http.StatusForbidden,
			expectedErr:  "INVALID_STATE",
		},
		{
			name:         "bad request",
			err:          shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive"),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "INVALID_AMOUNT",
		},
		{
			name:         "wrapped domain error",
			err:          fmt.Errorf("withdraw: %w", shared.ErrNotFound),
			expectedCode: http.StatusNotFound,
			expectedErr:  "NOT_FOUND",
		},
		{
			name:         "internal domain error hides details",
			err:          shared.Internal("save batch", assert.AnError),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
		{
			name:         "plain error",
			err:          assert.AnError,
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerUUIDParam(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()

	t.Run("valid", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		got, ok := h.uuidParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("invalid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "nope"}}
		_, ok := h.uuidParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerCallerMissing(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	_, ok := h.caller(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFilterFrom(t *testing.T) {
	assert.Equal(t, shared.Filter{Page: 1, PageSize: 20}, filterFrom(dto.PageRequest{}))
	assert.Equal(t, shared.Filter{Page: 3, PageSize: 50}, filterFrom(dto.PageRequest{Page: 3, PageSize: 50}))
	assert.Equal(t, shared.Filter{Page: 1, PageSize: 20, OrderBy: "date", OrderDir: "asc"},
		filterFrom(dto.PageRequest{OrderBy: "date", OrderDir: "asc"}))
}
