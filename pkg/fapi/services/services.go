package services

import (
	"github.com/quatton/fina/pkg/fapi/services/iam"
	"github.com/quatton/fina/pkg/fapi/services/identity"
	"github.com/quatton/fina/pkg/fapi/services/parser"
	"github.com/quatton/fina/pkg/fapi/services/transactions"
	"github.com/quatton/fina/pkg/flog"
)

type Services struct {
	Identity     *identity.Resolver
	IAM          *iam.IAMService
	Transactions *transactions.Service
	Parser       *parser.Service
	Logger       *flog.Logger
}

func NewServices(identitySvc *identity.Resolver, iamSvc *iam.IAMService, txSvc *transactions.Service, parserSvc *parser.Service, logger *flog.Logger) *Services {
	if logger == nil {
		logger = flog.NewDefault()
	}
	return &Services{
		Identity:     identitySvc,
		IAM:          iamSvc,
		Transactions: txSvc,
		Parser:       parserSvc,
		Logger:       logger,
	}
}

// EmptyServices backs route registration when only the OpenAPI document is
// needed and no handler will run.
func EmptyServices() *Services {
	return &Services{
		Identity:     nil,
		IAM:          nil,
		Transactions: nil,
		Parser:       nil,
		Logger:       flog.NewQuiet(),
	}
}
