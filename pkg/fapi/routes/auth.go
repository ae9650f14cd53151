package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/schemas"
	"github.com/quatton/fina/pkg/fapi/services"
	"github.com/quatton/fina/pkg/fapi/services/identity"
)

func RegisterAuth(api huma.API, svcs *services.Services) {
	svc := svcs.Identity
	logger := svcs.Logger

	huma.Register(api, huma.Operation{
		OperationID: "auth-signup",
		Method:      http.MethodPost,
		Path:        "/auth/signup",
		Summary:     "Create an account",
		Description: "Registers a local account with email and password and signs it in",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.SignupRequest) (*schemas.TokenResponse, error) {
		sess, err := svc.Signup(ctx, input.Body.Email, input.Body.Password, input.Body.DisplayName)
		if err != nil {
			return nil, toHTTP(logger, "signup", err)
		}
		return tokenResponse(sess), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Sign in with a password",
		Description: "Exchanges email and password for an access token",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.LoginRequest) (*schemas.TokenResponse, error) {
		sess, err := svc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, toHTTP(logger, "login", err)
		}
		return tokenResponse(sess), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-oauth-start",
		Method:      http.MethodGet,
		Path:        "/auth/oauth/{provider}/start",
		Summary:     "Start a federated sign in",
		Description: "Returns the provider consent URL the client should open",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.OAuthStartRequest) (*schemas.OAuthStartResponse, error) {
		authURL, err := svc.OAuthStart(ctx, input.Provider)
		if err != nil {
			return nil, toHTTP(logger, "oauth-start", err)
		}
		resp := &schemas.OAuthStartResponse{}
		resp.Body.AuthorizationURL = authURL
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-oauth-callback",
		Method:      http.MethodPost,
		Path:        "/auth/oauth/{provider}/callback",
		Summary:     "Finish a federated sign in",
		Description: "Exchanges the provider authorization code for an access token, creating the account on first use",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.OAuthCallbackRequest) (*schemas.TokenResponse, error) {
		sess, err := svc.OAuthCallback(ctx, input.Provider, input.Body.Code, input.Body.State)
		if err != nil {
			return nil, toHTTP(logger, "oauth-callback", err)
		}
		return tokenResponse(sess), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-otp-request",
		Method:      http.MethodPost,
		Path:        "/auth/password/otp/request",
		Summary:     "Request a one-time code",
		Description: "Sends a six digit code to the account email, valid for ten minutes",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.OTPRequest) (*schemas.MessageResponse, error) {
		if err := svc.RequestOtp(ctx, input.Body.Email); err != nil {
			return nil, toHTTP(logger, "otp-request", err)
		}
		resp := &schemas.MessageResponse{}
		resp.Body.Message = "OTP sent to email"
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-otp-verify",
		Method:      http.MethodPost,
		Path:        "/auth/password/otp/verify",
		Summary:     "Sign in with a one-time code",
		Description: "Consumes the code, optionally replaces the password, and returns an access token",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *schemas.OTPVerifyRequest) (*schemas.TokenResponse, error) {
		sess, err := svc.VerifyOtp(ctx, input.Body.Email, input.Body.OTP, input.Body.NewPassword)
		if err != nil {
			return nil, toHTTP(logger, "otp-verify", err)
		}
		return tokenResponse(sess), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Sign out",
		Description: "Acknowledges sign out; clients discard their token",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *struct{}) (*schemas.MessageResponse, error) {
		resp := &schemas.MessageResponse{}
		resp.Body.Message = svc.Logout(ctx)
		return resp, nil
	})
}

func tokenResponse(sess *identity.Session) *schemas.TokenResponse {
	return &schemas.TokenResponse{
		Body: schemas.TokenBody{
			AccessToken: sess.AccessToken,
			TokenType:   sess.TokenType,
			ExpiresIn:   sess.ExpiresIn,
		},
	}
}
