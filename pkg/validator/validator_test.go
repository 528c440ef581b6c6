package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type uuidSubject struct {
	OwnerID uuid.UUID `validate:"uuid_required"`
}

type moneySubject struct {
	Amount decimal.Decimal `validate:"money_gt0"`
}

func TestUUIDRequiredRejectsNilUUID(t *testing.T) {
	if errs := ValidateStruct(uuidSubject{}); len(errs) != 1 {
		t.Fatalf("Expected 1 error for the nil UUID, got %d", len(errs))
	} else if errs[0].Tag != "uuid_required" {
		t.Errorf("Expected tag uuid_required, got %s", errs[0].Tag)
	}
	if errs := ValidateStruct(uuidSubject{OwnerID: uuid.New()}); len(errs) != 0 {
		t.Errorf("Expected no errors for a set UUID, got %v", errs)
	}
}

func TestMoneyGt0RequiresPositiveAmount(t *testing.T) {
	cases := []struct {
		amount string
		ok     bool
	}{
		{"0", false},
		{"-5.00", false},
		{"0.01", true},
		{"100", true},
	}
	for _, tc := range cases {
		errs := ValidateStruct(moneySubject{Amount: decimal.RequireFromString(tc.amount)})
		if tc.ok && len(errs) != 0 {
			t.Errorf("Amount %s: expected no errors, got %v", tc.amount, errs)
		}
		if !tc.ok && len(errs) != 1 {
			t.Errorf("Amount %s: expected 1 error, got %d", tc.amount, len(errs))
		}
	}
}
