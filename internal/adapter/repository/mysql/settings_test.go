package mysql

import (
	"context"
	"errors"
	"testing"

	"microlend-escrow/internal/domain/settings"
	"microlend-escrow/internal/testutil/testdb"
)

func TestSettings_EnsureDefaultsIsIdempotent(t *testing.T) {
	repo := NewSettingsRepository(testdb.Open(t))
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("want ErrNotFound before init, got %v", err)
	}
	if err := repo.EnsureDefaults(ctx, 100, 500); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}

	s, err := repo.GetForUpdate(ctx)
	if err != nil {
		t.Fatalf("GetForUpdate: %v", err)
	}
	s.PlatformFeeRate = 250
	s.NextLoanID()
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A restart must not clobber admin changes or the counter.
	if err := repo.EnsureDefaults(ctx, 100, 500); err != nil {
		t.Fatalf("EnsureDefaults again: %v", err)
	}
	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlatformFeeRate != 250 || got.LatePenaltyRate != 500 || got.LoanCounter != 1 {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
