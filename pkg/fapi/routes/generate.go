package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/schemas"
	"github.com/quatton/fina/pkg/fapi/services"
)

func RegisterGenerate(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-transaction",
		Method:      http.MethodPost,
		Path:        "/generate",
		Summary:     "Parse a transaction from text",
		Description: "Asks the completion API to turn a free-text description into transaction fields",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.GenerateRequest) (*schemas.GenerateResponse, error) {
		if _, err := svcs.IAM.Require(ctx); err != nil {
			return nil, err
		}

		res, err := svcs.Parser.Parse(ctx, input.Body.Prompt)
		if err != nil {
			return nil, toHTTP(svcs.Logger, "generate", err)
		}

		resp := &schemas.GenerateResponse{}
		resp.Body.Raw = res.Raw
		resp.Body.Transaction = res.Fields
		return resp, nil
	})
}
