package response_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"

	"github.com/ivanshkirev/subscription-escrow/internal/http/response"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

func TestOKWithData(t *testing.T) {
	resp := response.OKWithData(map[string]any{"plan_id": 1})
	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "domain error carries its code",
			err:      models.ErrPlanInactive,
			wantCode: "PLAN_INACTIVE",
		},
		{
			name:     "wrapped domain error is unwrapped",
			err:      fmt.Errorf("services.escrow.Subscribe: %w", models.ErrPaymentFailed),
			wantCode: "PAYMENT_FAILED",
		},
		{
			name:     "plain error has no code",
			err:      errors.New("boom"),
			wantCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := response.DomainError(tt.err)
			assert.Equal(t, response.StatusError, resp.Status)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	type req struct {
		Amount uint64 `validate:"required,gt=0"`
		Email  string `validate:"required,email"`
	}

	validate := validator.New()
	err := validate.Struct(req{})
	assert.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Amount")
	assert.Contains(t, resp.Error, "Email")
}
