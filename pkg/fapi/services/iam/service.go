// Package iam authenticates bearer tokens on incoming requests and exposes
// the resulting principal to handlers.
package iam

import (
	"github.com/quatton/fina/pkg/fauth"
	"github.com/quatton/fina/pkg/flog"
)

// TokenVerifier validates an access token.
type TokenVerifier interface {
	Verify(token string) (*fauth.UserClaims, error)
}

type IAMService struct {
	tokens TokenVerifier
	logger *flog.Logger
}

func NewIAMService(tokens TokenVerifier, logger *flog.Logger) *IAMService {
	if logger == nil {
		logger = flog.NewDefault()
	}
	return &IAMService{tokens: tokens, logger: logger}
}
