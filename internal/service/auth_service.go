package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/logger"
	"quizform/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// VerifyCredentials authenticates an email/password pair against the
	// user store. Unknown users, unverified accounts and bad passwords are
	// indistinguishable to the caller.
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
	// CreateSessionToken issues the session cookie JWT.
	CreateSessionToken(userID, userName, appellation, role string, ttl time.Duration) (string, error)
	// ValidateSessionToken parses and verifies a session cookie JWT.
	ValidateSessionToken(tokenString string) (*dto.AuthClaims, error)
}

type authService struct {
	userRepo domain.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new instance of authService
func NewAuthService(userRepo domain.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Login failed", err)
	}
	if user == nil || !user.Verified {
		return nil, domain.NewUnauthorizedError("Login failed")
	}

	hash := util.HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.PasswordHash)) != 1 {
		logger.Get().Warn("Login rejected", zap.String("email", email))
		return nil, domain.NewUnauthorizedError("Login failed")
	}
	return user, nil
}

func (s *authService) CreateSessionToken(userID, userName, appellation, role string, ttl time.Duration) (string, error) {
	claims := dto.AuthClaims{
		UserID:      userID,
		UserName:    userName,
		Appellation: appellation,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

func (s *authService) ValidateSessionToken(tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, domain.NewUnauthorizedError("Invalid session")
	}
	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, domain.NewUnauthorizedError("Invalid session")
	}
	return claims, nil
}
