package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Date   string          `json:"date" binding:"required,datetime=2006-01-02"`
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
	Counts map[int64]int64 `json:"counts" binding:"required,dive,keys,gt=0,endkeys,gte=0"`
	Till   string          `json:"till" binding:"omitempty,code"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req sampleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func post(router *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(body)))
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestValidation(t *testing.T) {
	router := bindRouter()

	t.Run("valid", func(t *testing.T) {
		w, _ := post(router, `{"date":"2024-01-10","amount":"150000","counts":{"10000":15}}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reports json field names", func(t *testing.T) {
		w, resp := post(router, `{"date":"10/01/2024","amount":"0","counts":{"10000":-1}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be a date formatted as YYYY-MM-DD", fields["date"])
		assert.Equal(t, "Must be greater than 0", fields["amount"])
		assert.NotEmpty(t, resp.RequestID)
	})

	t.Run("custody codes", func(t *testing.T) {
		w, _ := post(router, `{"date":"2024-01-10","amount":"1","counts":{"10000":1},"till":"SAV-01"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		w, resp := post(router, `{"date":"2024-01-10","amount":"1","counts":{"10000":1},"till":"P 01"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "till", resp.Error.Details[0].Field)
		assert.Contains(t, resp.Error.Details[0].Message, "letters, digits")
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := post(router, `{"date":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}
