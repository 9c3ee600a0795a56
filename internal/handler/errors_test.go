package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/internal/workflow"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func respond(t *testing.T, err error) (int, response.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, err)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "validation error",
			err:      workflow.NewValidationError("amount", "fuera de rango"),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "capability error",
			err:      &workflow.CapabilityError{ActorID: 3, Capability: "gestionar"},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "version conflict",
			err:      &workflow.ConflictError{Entity: "voucher", ID: "v1", ExpectedVersion: 1, ActualVersion: 2},
			wantCode: http.StatusConflict,
		},
		{
			name:     "undefined transition",
			err:      &workflow.TransitionError{Entity: "voucher", From: "C", Event: "approve"},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "timeout",
			err:      context.DeadlineExceeded,
			wantCode: http.StatusGatewayTimeout,
		},
		{
			name:     "not found",
			err:      gorm.ErrRecordNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unexpected failure",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := respond(t, tt.err)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, "error", body.Status)
			require.NotEmpty(t, body.Message)
		})
	}
}

func TestRespondErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("voucher not found: %w", gorm.ErrRecordNotFound)
	code, body := respond(t, wrapped)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "error", body.Status)
}
