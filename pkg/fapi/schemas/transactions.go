package schemas

import "time"

// TransactionFields are the user supplied parts of a transaction.
type TransactionFields struct {
	Content  string  `json:"content" minLength:"1" doc:"What the money was for" example:"Lunch"`
	Currency string  `json:"currency" minLength:"1" doc:"Currency code" example:"USD"`
	Amount   float64 `json:"amount" doc:"Amount in currency units" example:"12.5"`
	Type     string  `json:"type" enum:"income,expense" doc:"Direction of the money"`
	Date     string  `json:"date,omitempty" required:"false" pattern:"^(\\d{4}-\\d{2}-\\d{2}|null)?$" doc:"Calendar day, defaults to today" example:"2025-01-31"`
	Category string  `json:"category" doc:"Category label" example:"Food"`
	Tags     string  `json:"tags" doc:"Comma separated tags" example:"work,team"`
	Notes    string  `json:"notes,omitempty" required:"false" doc:"Free text notes"`
}

type Transaction struct {
	ID int64 `json:"id" doc:"Transaction identifier"`
	TransactionFields
	CreatedAt time.Time `json:"created_at" doc:"When the transaction was recorded"`
}

type AddTransactionRequest struct {
	Body TransactionFields
}

type UpdateTransactionRequest struct {
	ID   int64 `path:"id" doc:"Transaction identifier"`
	Body TransactionFields
}

type DeleteTransactionRequest struct {
	ID int64 `path:"id" doc:"Transaction identifier"`
}

type ListTransactionsResponse struct {
	Body []Transaction
}

type GenerateRequest struct {
	Body struct {
		Prompt string `json:"prompt" minLength:"1" doc:"Free-text description of a transaction" example:"breakfast of banh mi for 30000 VND"`
	}
}

type GenerateResponse struct {
	Body struct {
		Raw         string         `json:"raw" doc:"Model answer as returned"`
		Transaction map[string]any `json:"transaction,omitempty" doc:"Decoded fields when the answer is a JSON object"`
	}
}
