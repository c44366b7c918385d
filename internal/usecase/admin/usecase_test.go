package admin_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/settings"
	"microlend-escrow/internal/testutil/ledgertest"
	"microlend-escrow/internal/usecase/admin"
	"microlend-escrow/pkg/txguard"
)

func TestRates_Defaults(t *testing.T) {
	env := ledgertest.New(t)
	got, err := admin.NewUsecase(env.Deps).Rates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, admin.RatesDTO{PlatformFeeRate: 100, LatePenaltyRate: 500}, *got)
}

func TestSetRates(t *testing.T) {
	tests := []struct {
		name    string
		caller  common.Address
		fee     bool
		rate    uint64
		wantErr error
	}{
		{"fee at limit", ledgertest.Owner, true, settings.MaxPlatformFeeRate, nil},
		{"fee zero", ledgertest.Owner, true, 0, nil},
		{"fee too high", ledgertest.Owner, true, settings.MaxPlatformFeeRate + 1, settings.ErrRateTooHigh},
		{"penalty at limit", ledgertest.Owner, false, settings.MaxLatePenaltyRate, nil},
		{"penalty too high", ledgertest.Owner, false, settings.MaxLatePenaltyRate + 1, settings.ErrRateTooHigh},
		{"fee not owner", ledgertest.Stranger, true, 50, domain.ErrNotOwner},
		{"penalty not owner", ledgertest.Stranger, false, 50, domain.ErrNotOwner},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := ledgertest.New(t)
			uc := admin.NewUsecase(env.Deps)
			ctx := context.Background()

			set := uc.SetLatePenaltyRate
			if tc.fee {
				set = uc.SetPlatformFeeRate
			}
			_, err := set(ctx, tc.caller, tc.rate)
			got, rerr := uc.Rates(ctx)
			require.NoError(t, rerr)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, admin.RatesDTO{PlatformFeeRate: 100, LatePenaltyRate: 500}, *got, "rates unchanged")
				return
			}
			require.NoError(t, err)
			if tc.fee {
				assert.Equal(t, tc.rate, got.PlatformFeeRate)
				assert.Equal(t, uint64(500), got.LatePenaltyRate)
			} else {
				assert.Equal(t, tc.rate, got.LatePenaltyRate)
				assert.Equal(t, uint64(100), got.PlatformFeeRate)
			}
		})
	}
}

func TestSetRate_ReentrantRejected(t *testing.T) {
	env := ledgertest.New(t)
	uc := admin.NewUsecase(env.Deps)
	ctx, release, err := env.Deps.Guard.Enter(context.Background())
	require.NoError(t, err)
	defer release()

	_, err = uc.SetPlatformFeeRate(ctx, ledgertest.Owner, 10)
	assert.ErrorIs(t, err, txguard.ErrReentrantCall)
}

func TestInit_KeepsExistingRates(t *testing.T) {
	env := ledgertest.New(t)
	uc := admin.NewUsecase(env.Deps)
	ctx := context.Background()

	require.NoError(t, uc.Init(ctx, 300, 700))
	got, err := uc.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.PlatformFeeRate)

	assert.ErrorIs(t, uc.Init(ctx, 5000, 0), settings.ErrRateTooHigh)
}
