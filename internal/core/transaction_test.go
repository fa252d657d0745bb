package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validDraft() Draft {
	return Draft{
		Date:        NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(42),
		Category:    "food",
		Type:        Expense,
		Description: "groceries",
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{"valid", func(d *Draft) {}, nil},
		{"zero amount is allowed", func(d *Draft) { d.Amount = decimal.Zero }, nil},
		{"negative amount", func(d *Draft) { d.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
		{"empty category", func(d *Draft) { d.Category = "  " }, ErrEmptyCategory},
		{"bad type", func(d *Draft) { d.Type = "transfer" }, ErrInvalidType},
		{"empty description", func(d *Draft) { d.Description = "" }, ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("zero date", func(t *testing.T) {
		d := validDraft()
		d.Date = Date{}
		if err := d.Validate(); err == nil {
			t.Fatal("expected error for zero date")
		}
	})
}

func TestDraftConfirmed(t *testing.T) {
	d := validDraft()
	tx := d.Confirmed(7)
	if tx.ID != 7 {
		t.Errorf("ID = %d", tx.ID)
	}
	if tx.Optimistic {
		t.Error("confirmed transaction must not be optimistic")
	}
	if back := tx.AsDraft(); back != d {
		t.Errorf("AsDraft() = %+v, want %+v", back, d)
	}
}
