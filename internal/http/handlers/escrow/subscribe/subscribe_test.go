package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

// Мок сервиса оформления подписки
type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, userUID string, planID uint32) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	sub := &models.Subscription{
		Address:   "subaddr",
		UserUID:   "uid-1",
		PlanID:    1,
		StartTime: 1000,
		EndTime:   2000,
		Active:    true,
	}

	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantRespStatus string
	}{
		{
			name:        "successful subscription",
			requestBody: models.DummySubscribe{PlanID: 1},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(1)).Return(sub, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantRespStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			userUID:        "uid-1",
			setupMocks:     func(s *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantRespStatus: "Error",
		},
		{
			name:           "validation error - missing plan id",
			requestBody:    models.DummySubscribe{},
			userUID:        "uid-1",
			setupMocks:     func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantRespStatus: "Error",
		},
		{
			name:           "no user in context",
			requestBody:    models.DummySubscribe{PlanID: 1},
			userUID:        "",
			setupMocks:     func(s *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantRespStatus: "Error",
		},
		{
			name:        "plan not found",
			requestBody: models.DummySubscribe{PlanID: 99},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(99)).
					Return(nil, models.ErrInvalidPlanID).Once()
			},
			wantStatusCode: http.StatusNotFound,
			wantRespStatus: "Error",
		},
		{
			name:        "plan inactive",
			requestBody: models.DummySubscribe{PlanID: 2},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(2)).
					Return(nil, models.ErrPlanInactive).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantRespStatus: "Error",
		},
		{
			name:        "payment failed",
			requestBody: models.DummySubscribe{PlanID: 1},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(1)).
					Return(nil, models.ErrPaymentFailed).Once()
			},
			wantStatusCode: http.StatusPaymentRequired,
			wantRespStatus: "Error",
		},
		{
			name:        "duplicate subscription",
			requestBody: models.DummySubscribe{PlanID: 1},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(1)).
					Return(nil, models.ErrSubscriptionAlreadyExists).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantRespStatus: "Error",
		},
		{
			name:        "internal error",
			requestBody: models.DummySubscribe{PlanID: 1},
			userUID:     "uid-1",
			setupMocks: func(s *ServiceMock) {
				s.On("Subscribe", mock.Anything, "uid-1", uint32(1)).
					Return(nil, errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantRespStatus: "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMocks(svc)
			handler := New(newNoopLogger(), svc)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", &body)
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantRespStatus, resp["status"])

			svc.AssertExpectations(t)
		})
	}
}
