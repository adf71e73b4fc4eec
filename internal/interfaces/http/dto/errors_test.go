package dto

import (
	"net/http"
	"testing"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		expected int
	}{
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindConflict, http.StatusConflict},
		{shared.KindForbidden, http.StatusForbidden},
		{shared.KindBadRequest, http.StatusBadRequest},
		{shared.KindInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForKind(tt.kind))
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string{"a"}, 41, 2, 20, "req-1")
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewPageResponse(nil, 0, 1, 0, "")
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{{Field: "amount", Message: "This field is required"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "req-2", resp.RequestID)
}
