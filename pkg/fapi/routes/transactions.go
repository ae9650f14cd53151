package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/fina/pkg/db/models"
	"github.com/quatton/fina/pkg/fapi/schemas"
	"github.com/quatton/fina/pkg/fapi/services"
	"github.com/quatton/fina/pkg/fapi/services/transactions"
)

func RegisterTransactions(api huma.API, svcs *services.Services) {
	svc := svcs.Transactions
	logger := svcs.Logger

	huma.Register(api, huma.Operation{
		OperationID: "add-transaction",
		Method:      http.MethodPost,
		Path:        "/addTransaction",
		Summary:     "Record a transaction",
		Description: "Stores an income or expense entry for the caller; the date defaults to today",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.AddTransactionRequest) (*schemas.MessageResponse, error) {
		principal, err := svcs.IAM.Require(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := svc.Add(ctx, principal.ID, toInput(input.Body)); err != nil {
			return nil, toHTTP(logger, "add-transaction", err)
		}
		return message("Transaction added successfully"), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/transactions",
		Summary:     "List transactions",
		Description: "Returns the caller's transactions, newest first",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *struct{}) (*schemas.ListTransactionsResponse, error) {
		principal, err := svcs.IAM.Require(ctx)
		if err != nil {
			return nil, err
		}
		txs, err := svc.List(ctx, principal.ID)
		if err != nil {
			return nil, toHTTP(logger, "list-transactions", err)
		}

		resp := &schemas.ListTransactionsResponse{Body: make([]schemas.Transaction, 0, len(txs))}
		for _, tx := range txs {
			resp.Body = append(resp.Body, fromModel(tx))
		}
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPut,
		Path:        "/updateTransaction/{id}",
		Summary:     "Update a transaction",
		Description: "Replaces every field of one of the caller's transactions",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.UpdateTransactionRequest) (*schemas.MessageResponse, error) {
		principal, err := svcs.IAM.Require(ctx)
		if err != nil {
			return nil, err
		}
		if err := svc.Update(ctx, principal.ID, input.ID, toInput(input.Body)); err != nil {
			return nil, toHTTP(logger, "update-transaction", err)
		}
		return message("Transaction updated successfully"), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-transaction",
		Method:      http.MethodDelete,
		Path:        "/deleteTransaction/{id}",
		Summary:     "Delete a transaction",
		Description: "Removes one of the caller's transactions",
		Tags:        []string{TagTransactions.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.DeleteTransactionRequest) (*schemas.MessageResponse, error) {
		principal, err := svcs.IAM.Require(ctx)
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(ctx, principal.ID, input.ID); err != nil {
			return nil, toHTTP(logger, "delete-transaction", err)
		}
		return message("Transaction deleted successfully"), nil
	})
}

func toInput(f schemas.TransactionFields) transactions.Input {
	return transactions.Input{
		Content:  f.Content,
		Currency: f.Currency,
		Amount:   f.Amount,
		Type:     models.TransactionType(f.Type),
		Date:     f.Date,
		Category: f.Category,
		Tags:     f.Tags,
		Notes:    f.Notes,
	}
}

func fromModel(tx models.Transaction) schemas.Transaction {
	return schemas.Transaction{
		ID: tx.ID,
		TransactionFields: schemas.TransactionFields{
			Content:  tx.Content,
			Currency: tx.Currency,
			Amount:   tx.Amount,
			Type:     string(tx.Type),
			Date:     tx.Date,
			Category: tx.Category,
			Tags:     tx.Tags,
			Notes:    tx.Notes,
		},
		CreatedAt: tx.CreatedAt,
	}
}

func message(msg string) *schemas.MessageResponse {
	resp := &schemas.MessageResponse{}
	resp.Body.Message = msg
	return resp
}
