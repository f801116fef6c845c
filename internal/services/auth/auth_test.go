package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	customjwt "github.com/ivanshkirev/subscription-escrow/internal/lib/jwt"
	"github.com/ivanshkirev/subscription-escrow/internal/lib/password"
	"github.com/ivanshkirev/subscription-escrow/internal/models"
	"github.com/ivanshkirev/subscription-escrow/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		username   string
		password   string
		setupMocks func(r *UserRepoMock)
		wantUID    string
		wantErr    bool
	}{
		{
			name:     "successful registration",
			email:    "test@example.com",
			username: "testuser",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						user.UID != "" &&
						user.PasswordHash != "" &&
						user.Role == "user"
				})).Return("some-uuid-string", nil).Once()
			},
			wantUID: "some-uuid-string",
		},
		{
			name:     "repository error",
			email:    "test@example.com",
			username: "testuser",
			password: "password123",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.New(repo, customjwt.NewMaker("secret", time.Minute))

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUID, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hash, err := password.GetHash(rawPassword)
	assert.NoError(t, err)

	user := &models.User{
		UID:          "uid-1",
		Username:     "testuser",
		PasswordHash: hash,
		Role:         "admin",
	}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(user, nil).Once()
			},
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(user, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "user not found",
			username: "ghost",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "ghost").
					Return(nil, models.ErrRecordNotFound).Once()
			},
			wantErr: models.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			svc := auth.New(repo, customjwt.NewMaker("secret", time.Minute))

			tt.setupMocks(repo)

			token, role, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, "admin", role)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_ValidateToken(t *testing.T) {
	maker := customjwt.NewMaker("secret", time.Minute)
	svc := auth.New(new(UserRepoMock), maker)

	token, err := maker.GenerateToken("testuser", "user", "uid-1")
	assert.NoError(t, err)

	user, role, valid, err := svc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "user", role)
	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, "testuser", user.Username)

	_, _, valid, err = svc.ValidateToken(context.Background(), "garbage-token")
	assert.Error(t, err)
	assert.False(t, valid)
}
