package withdraw

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ivanshkirev/subscription-escrow/internal/http/middlewarectx"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
)

// Мок сервиса вывода средств
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Withdraw(ctx context.Context, callerUID string, amount uint64) error {
	args := m.Called(ctx, callerUID, amount)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestWithdrawHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantCode       string
	}{
		{
			name:        "owner withdraws",
			requestBody: models.DummyWithdraw{Amount: 300},
			userUID:     "owner-uid",
			setupMocks: func(s *ServiceMock) {
				s.On("Withdraw", mock.Anything, "owner-uid", uint64(300)).Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "non-owner is rejected",
			requestBody: models.DummyWithdraw{Amount: 300},
			userUID:     "somebody-else",
			setupMocks: func(s *ServiceMock) {
				s.On("Withdraw", mock.Anything, "somebody-else", uint64(300)).
					Return(models.ErrUnauthorized).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantCode:       "UNAUTHORIZED",
		},
		{
			name:        "insufficient vault balance",
			requestBody: models.DummyWithdraw{Amount: 1000000},
			userUID:     "owner-uid",
			setupMocks: func(s *ServiceMock) {
				s.On("Withdraw", mock.Anything, "owner-uid", uint64(1000000)).
					Return(models.ErrInsufficientVaultBalance).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantCode:       "INSUFFICIENT_VAULT_BALANCE",
		},
		{
			name:           "zero amount fails validation",
			requestBody:    models.DummyWithdraw{Amount: 0},
			userUID:        "owner-uid",
			setupMocks:     func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)
			handler := New(newNoopLogger(), svc)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/vault/withdraw", &body)
			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantCode != "" {
				var resp map[string]any
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, resp["code"])
			}

			svc.AssertExpectations(t)
		})
	}
}
