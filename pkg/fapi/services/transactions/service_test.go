package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quatton/fina/pkg/credstore"
	"github.com/quatton/fina/pkg/db/dbtest"
	"github.com/quatton/fina/pkg/db/models"
)

func setup(t *testing.T) (*Service, int64, int64) {
	t.Helper()
	ctx := context.Background()

	db := dbtest.NewSQLite(t)
	users := credstore.NewBunStore(db)

	alice, err := users.Insert(ctx, credstore.NewUser{Email: "a@x.com", PasswordHash: "h", Provider: models.ProviderLocal})
	if err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	bob, err := users.Insert(ctx, credstore.NewUser{Email: "b@x.com", PasswordHash: "h", Provider: models.ProviderLocal})
	if err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	svc := NewService(db)
	svc.now = func() time.Time { return time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC) }
	return svc, alice, bob
}

func lunch() Input {
	return Input{
		Content:  "Lunch",
		Currency: "USD",
		Amount:   12.5,
		Type:     models.TransactionExpense,
		Date:     "2025-02-01",
		Category: "Food & Drinks",
		Tags:     "Work",
	}
}

func TestAddAndList(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	tx, err := svc.Add(ctx, alice, lunch())
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if tx.ID == 0 {
		t.Fatal("expected an id to be assigned")
	}

	got, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one transaction, got %d", len(got))
	}
	if got[0].Content != "Lunch" || got[0].Amount != 12.5 || got[0].Date != "2025-02-01" || got[0].UserID != alice {
		t.Errorf("unexpected transaction %+v", got[0])
	}

	others, err := svc.List(ctx, bob)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("bob must not see alice's transactions, got %d", len(others))
	}
}

func TestAdd_DefaultsDateToToday(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	for _, date := range []string{"", "null"} {
		in := lunch()
		in.Date = date
		tx, err := svc.Add(ctx, alice, in)
		if err != nil {
			t.Fatalf("Add(%q) failed: %v", date, err)
		}
		if tx.Date != "2025-02-14" {
			t.Errorf("Add(%q) date = %q, want today", date, tx.Date)
		}
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	bad := lunch()
	bad.Date = "14/02/2025"
	if _, err := svc.Add(ctx, alice, bad); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	bad = lunch()
	bad.Type = "transfer"
	if _, err := svc.Add(ctx, alice, bad); !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	tx, _ := svc.Add(ctx, alice, lunch())

	in := lunch()
	in.Amount = 20
	in.Notes = "with dessert"
	if err := svc.Update(ctx, alice, tx.ID, in); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := svc.List(ctx, alice)
	if got[0].Amount != 20 || got[0].Notes != "with dessert" {
		t.Errorf("update not applied: %+v", got[0])
	}

	if err := svc.Update(ctx, bob, tx.ID, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating another user's row, got %v", err)
	}
	if err := svc.Update(ctx, alice, 999, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing row, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	tx, _ := svc.Add(ctx, alice, lunch())

	if err := svc.Delete(ctx, bob, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's row, got %v", err)
	}
	if err := svc.Delete(ctx, alice, tx.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, alice, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	got, _ := svc.List(ctx, alice)
	if len(got) != 0 {
		t.Fatalf("expected no transactions left, got %d", len(got))
	}
}
