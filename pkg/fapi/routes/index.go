package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const welcomeMessage = "Welcome to the FinA Transactions API"

type RootOutput struct {
	Body struct {
		Message string `json:"message" example:"Welcome to the FinA Transactions API" doc:"Welcome message"`
	}
}

func RegisterIndex(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Root endpoint",
		Description: "Returns a welcome message",
		Tags:        []string{TagGeneral.String()},
	}, func(ctx context.Context, input *struct{}) (*RootOutput, error) {
		resp := &RootOutput{}
		resp.Body.Message = welcomeMessage
		return resp, nil
	})
}
