package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/fapi/services"
)

func RegisterAPI(api huma.API, svcs *services.Services) {
	if svcs == nil {
		svcs = services.EmptyServices()
	}
	RegisterIndex(api)
	RegisterHealth(api)
	RegisterAuth(api, svcs)
	RegisterIAM(api, svcs)
	RegisterTransactions(api, svcs)
	RegisterGenerate(api, svcs)
}
