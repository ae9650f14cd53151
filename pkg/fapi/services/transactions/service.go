// Package transactions stores the finance entries each user records.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quatton/fina/pkg/db/models"
	"github.com/quatton/fina/pkg/ferr"
	"github.com/uptrace/bun"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound    = ferr.New(ferr.CodeNotFound, "Transaction not found")
	ErrInvalidDate = ferr.New(ferr.CodeBadRequest, "Date must be YYYY-MM-DD")
	ErrInvalidType = ferr.New(ferr.CodeBadRequest, "Type must be income or expense")
)

// Input is the writable part of a transaction. An empty Date (or the literal
// "null" some clients send) means today.
type Input struct {
	Content  string
	Currency string
	Amount   float64
	Type     models.TransactionType
	Date     string
	Category string
	Tags     string
	Notes    string
}

// Service scopes every query to the owning user; rows of other users are
// reported as not found.
type Service struct {
	db  *bun.DB
	now func() time.Time
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func (s *Service) Add(ctx context.Context, userID int64, in Input) (*models.Transaction, error) {
	tx, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	tx.CreatedAt = s.now().UTC()

	if _, err := s.db.NewInsert().Model(tx).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := s.db.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Order("date DESC", "id DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, in Input) error {
	tx, err := s.build(userID, in)
	if err != nil {
		return err
	}

	res, err := s.db.NewUpdate().
		Model(tx).
		Column("content", "currency", "amount", "type", "date", "category", "tags", "notes").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectOne(res)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.NewDelete().
		Model((*models.Transaction)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectOne(res)
}

func (s *Service) build(userID int64, in Input) (*models.Transaction, error) {
	switch in.Type {
	case models.TransactionIncome, models.TransactionExpense:
	default:
		return nil, ErrInvalidType
	}

	date := in.Date
	if date == "" || date == "null" {
		date = s.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	return &models.Transaction{
		UserID:   userID,
		Content:  in.Content,
		Currency: in.Currency,
		Amount:   in.Amount,
		Type:     in.Type,
		Date:     date,
		Category: in.Category,
		Tags:     in.Tags,
		Notes:    in.Notes,
	}, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
