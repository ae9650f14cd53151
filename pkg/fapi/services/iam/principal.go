package iam

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/schemas"
)

type ctxKey string

const principalKey ctxKey = "fina.principal"

func (s *IAMService) Principal(ctx context.Context) (*schemas.Principal, bool) {
	if v := ctx.Value(principalKey); v != nil {
		if p, ok := v.(*schemas.Principal); ok && p != nil {
			return p, true
		}
	}
	return nil, false
}

// Require returns the principal or a 401 suitable for returning from a
// handler.
func (s *IAMService) Require(ctx context.Context) (*schemas.Principal, error) {
	if p, ok := s.Principal(ctx); ok {
		return p, nil
	}
	return nil, huma.Error401Unauthorized("Authentication required")
}
