package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeConflict:        http.StatusConflict,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeInvalidArgument: http.StatusBadRequest,
		ErrorCodeBadRequest:      http.StatusBadRequest,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeTimeout:         http.StatusGatewayTimeout,
		ErrorCodeInternal:        http.StatusInternalServerError,
		"SOMETHING_ELSE":         http.StatusInternalServerError,
	}

	for code, expected := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, expected, HTTPStatusFromCode(code))
		})
	}
}

// TestMapDomainError tests the status, code and message of each error kind.
func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "module not found",
			err:         fmt.Errorf("perform: %w", domain.NewNotFoundError("delivery module", "drone")),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: `delivery module "drone" not found`,
		},
		{
			name:        "conflict",
			err:         domain.NewConflictError("postage quote", "already exists"),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeConflict,
			wantMessage: "postage quote conflict: already exists",
		},
		{
			name:        "invalid delivery mode keeps localized message",
			err:         fmt.Errorf("flat-rate: %w", domain.NewInvalidArgumentError("deliveryMode", "drone", "Mode de livraison invalide")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeInvalidArgument,
			wantMessage: "Mode de livraison invalide",
		},
		{
			name:        "carrier unavailable",
			err:         fmt.Errorf("carrier: %w", domain.NewUnavailableError("carrier-rates", "circuit open")),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "carrier-rates is unavailable: circuit open",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("carrier: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "request timeout exceeded",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("dial tcp 10.0.0.3:3306: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: internalErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestMapDomainError_ValidationDetails(t *testing.T) {
	err := fmt.Errorf("validate: %w", domain.NewValidationError("cart", "cart has no items"))

	status, resp := MapDomainError(err)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, "cart has no items", resp.Error.Message)
	assert.Equal(t, map[string]string{"cart": "cart has no items"}, resp.Error.Details)
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestHandleError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/postage/quotes/abc", http.NoBody)

	HandleError(c, domain.NewNotFoundError("postage quote", "abc"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Empty(t, resp.TraceID)
}

func TestHandleValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/postage/quote", http.NoBody)

	HandleValidationErrors(c, map[string]string{"cart.currency": "this field is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, "this field is required", resp.Error.Details["cart.currency"])
}

func TestErrorResponse_WithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeBadRequest, "bad").WithTraceID("4bf92f3577b34da6a3ce929d0e0e4736")

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.TraceID)
}
