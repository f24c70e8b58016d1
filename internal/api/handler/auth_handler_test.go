package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/user"
	"loan-origination/internal/pkg/apperrors"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, input user.CreateInput) (*user.User, error) {
	args := m.Called(ctx, input)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, role user.Role, status user.AccountStatus) ([]*user.User, error) {
	args := m.Called(ctx, role, status)
	if users, ok := args.Get(0).([]*user.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	args := m.Called(ctx, username, password)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var testAuthConfig = config.AuthConfig{
	Enabled:         true,
	JWTSecret:       "test-secret",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 24 * time.Hour,
}

func testActiveUser() *user.User {
	return &user.User{
		ID:       "user-1",
		Username: "jdoe",
		Role:     user.RoleOfficer,
		Status:   user.StatusActive,
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	mockUsers := new(MockUserService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewAuthHandler(testAuthConfig, mockUsers, logger)

	t.Run("issues a token pair for valid credentials", func(t *testing.T) {
		mockUsers.On("Authenticate", mock.Anything, "jdoe", "s3cret").Return(testActiveUser(), nil).Once()

		body := `{"username": "jdoe", "password": "s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.TokenResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, int64(900), resp.ExpiresIn)

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(testAuthConfig.JWTSecret), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "user-1", claims["sub"])
		assert.Equal(t, "officer", claims["role"])
		assert.Equal(t, "access", claims["type"])
		mockUsers.AssertExpectations(t)
	})

	t.Run("returns 401 for bad credentials", func(t *testing.T) {
		mockUsers.On("Authenticate", mock.Anything, "jdoe", "wrong").
			Return((*user.User)(nil), apperrors.ErrUnauthorized).Once()

		body := `{"username": "jdoe", "password": "wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a request without a password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(`{"username": "jdoe"}`))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	mockUsers := new(MockUserService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewAuthHandler(testAuthConfig, mockUsers, logger)

	signRefreshToken := func(sub, tokenType string) string {
		claims := jwt.MapClaims{
			"sub":  sub,
			"type": tokenType,
			"iat":  time.Now().Unix(),
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAuthConfig.JWTSecret))
		assert.NoError(t, err)
		return token
	}

	t.Run("reissues tokens for a valid refresh token", func(t *testing.T) {
		mockUsers.On("GetUser", mock.Anything, "user-1").Return(testActiveUser(), nil).Once()

		body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: signRefreshToken("user-1", "refresh")})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()

		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.TokenResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		mockUsers.AssertExpectations(t)
	})

	t.Run("rejects an access token used as refresh token", func(t *testing.T) {
		body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: signRefreshToken("user-1", "access")})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()

		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a refresh token for an inactive account", func(t *testing.T) {
		inactive := testActiveUser()
		inactive.Status = user.StatusInactive
		mockUsers.On("GetUser", mock.Anything, "user-1").Return(inactive, nil).Once()

		body, _ := json.Marshal(dto.RefreshRequest{RefreshToken: signRefreshToken("user-1", "refresh")})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()

		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token": "not-a-jwt"}`))
		rec := httptest.NewRecorder()

		handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
