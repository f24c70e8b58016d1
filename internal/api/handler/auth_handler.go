package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/user"
	"loan-origination/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.AuthConfig
	users  user.Service
	logger *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, users user.Service, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		users:  users,
		logger: l.With("component", "AuthHandler"),
	}
}

// Login exchanges credentials for a token pair.
//
// @Summary Authenticate and issue tokens
// @Description Verifies the credentials and returns a bearer access token plus a refresh token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse "Token pair"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or inactive account"
// @Router /auth/token [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	resp, err := h.issueTokens(u)
	if err != nil {
		h.logger.Error("Failed to sign tokens", "error", err)
		respondError(w, fmt.Errorf("%w: failed to issue tokens", apperrors.ErrInternalServer))
		return
	}

	h.logger.Info("Issued token pair", "username", u.Username)
	respondJSON(w, http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a fresh token pair.
//
// @Summary Refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse "New token pair"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(req.RefreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	u, err := h.users.GetUser(r.Context(), sub)
	if err != nil {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}
	if u.Status != user.StatusActive {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	resp, err := h.issueTokens(u)
	if err != nil {
		h.logger.Error("Failed to sign tokens", "error", err)
		respondError(w, fmt.Errorf("%w: failed to issue tokens", apperrors.ErrInternalServer))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) issueTokens(u *user.User) (dto.TokenResponse, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"type":     "access",
		"iat":      now.Unix(),
		"exp":      now.Add(h.cfg.AccessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return dto.TokenResponse{}, err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  u.ID,
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(h.cfg.RefreshTokenTTL).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
