package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/utils"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	AdminTokenTTL = 24 * time.Hour
	OwnerTokenTTL = 7 * 24 * time.Hour
)

// Claims are carried by every token the hub issues.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	AdminLogin(ctx context.Context, password string) (string, error)
	IssueOwnerToken(ctx context.Context, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	secret            []byte
	adminPasswordHash string
	now               func() time.Time
}

// NewAuthService builds the token service. An empty adminPasswordHash
// disables admin login.
func NewAuthService(secret, adminPasswordHash string) AuthService {
	return &authService{
		secret:            []byte(secret),
		adminPasswordHash: adminPasswordHash,
		now:               time.Now,
	}
}

func (s *authService) AdminLogin(ctx context.Context, password string) (string, error) {
	if s.adminPasswordHash == "" {
		return "", ErrAdminLoginDisabled
	}
	if !utils.CheckPasswordHash(password, s.adminPasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.issue(models.RoleAdmin, "admin", "", AdminTokenTTL)
}

// IssueOwnerToken mints a token an admin can hand to a team owner.
func (s *authService) IssueOwnerToken(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: a valid email is required", ErrValidationFailed)
	}
	return s.issue(models.RoleOwner, email, email, OwnerTokenTTL)
}

func (s *authService) issue(role models.Role, subject, email string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
