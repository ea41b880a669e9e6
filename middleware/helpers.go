package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/efootball-hub/models"
	"github.com/Dosada05/efootball-hub/services"
)

func GetClaimsFromContext(ctx context.Context) (*services.Claims, error) {
	claims, ok := ctx.Value(userContextKey).(*services.Claims)
	if !ok || claims == nil {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.Role, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if !claims.Role.IsValid() {
		return "", fmt.Errorf("invalid role value in claim: %q", claims.Role)
	}
	return claims.Role, nil
}

// GetOwnerEmailFromContext возвращает email владельца команды из owner-токена.
func GetOwnerEmailFromContext(ctx context.Context) (string, error) {
	claims, err := GetClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if claims.Role != models.RoleOwner || claims.Email == "" {
		return "", errors.New("owner email not found in token")
	}
	return claims.Email, nil
}

// WithClaims кладёт claims в контекст, нужен тестам обработчиков.
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}
