package iam

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/schemas"
)

// Middleware attaches the principal of a valid bearer token to the request
// context. Requests without a valid token pass through unauthenticated;
// handlers decide whether that is acceptable.
func (s *IAMService) Middleware() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		authHeader := ctx.Header("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				if p, err := s.Authenticate(parts[1]); err == nil {
					s.logger.Debug("authenticated user", "id", p.ID, "email", p.Email)
					ctx = huma.WithValue(ctx, principalKey, p)
				} else {
					s.logger.Warn("invalid token", "error", err)
				}
			}
		}

		next(ctx)
	}
}

// Authenticate verifies token and returns its principal.
func (s *IAMService) Authenticate(token string) (*schemas.Principal, error) {
	claims, err := s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &schemas.Principal{ID: id, Email: claims.Email}, nil
}
