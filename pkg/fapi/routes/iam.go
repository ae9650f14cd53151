package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/schemas"
	"github.com/quatton/fina/pkg/fapi/services"
)

func RegisterIAM(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Get current user",
		Description: "Retrieves the account behind the bearer token",
		Tags:        []string{TagAuth.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *struct{}) (*schemas.MeResponse, error) {
		principal, err := svcs.IAM.Require(ctx)
		if err != nil {
			return nil, err
		}

		user, err := svcs.Identity.Me(ctx, principal.ID)
		if err != nil {
			return nil, toHTTP(svcs.Logger, "me", err)
		}

		resp := &schemas.MeResponse{}
		resp.Body.User = schemas.User{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Provider:    user.Provider.String(),
			CreatedAt:   user.CreatedAt,
		}
		return resp, nil
	})
}
