package admin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/settings"
	"microlend-escrow/internal/domain/uow"
	"microlend-escrow/internal/usecase"
)

type RatesDTO struct {
	PlatformFeeRate uint64 `json:"platform_fee_rate"`
	LatePenaltyRate uint64 `json:"late_penalty_rate"`
}

// Usecase manages the owner-only platform parameters.
type Usecase struct{ d usecase.Deps }

func NewUsecase(d usecase.Deps) *Usecase { return &Usecase{d: d.WithDefaults()} }

// Init writes the configured rates the first time the ledger starts.
func (u *Usecase) Init(ctx context.Context, platformFeeRate, latePenaltyRate uint64) error {
	if err := settings.ValidatePlatformFeeRate(platformFeeRate); err != nil {
		return err
	}
	if err := settings.ValidateLatePenaltyRate(latePenaltyRate); err != nil {
		return err
	}
	return u.d.Settings.EnsureDefaults(ctx, platformFeeRate, latePenaltyRate)
}

func (u *Usecase) Rates(ctx context.Context) (*RatesDTO, error) {
	s, err := u.d.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &RatesDTO{PlatformFeeRate: s.PlatformFeeRate, LatePenaltyRate: s.LatePenaltyRate}, nil
}

func (u *Usecase) SetPlatformFeeRate(ctx context.Context, caller common.Address, rate uint64) (*RatesDTO, error) {
	return u.update(ctx, caller, settings.ValidatePlatformFeeRate(rate), func(s *settings.Settings) {
		s.PlatformFeeRate = rate
	})
}

func (u *Usecase) SetLatePenaltyRate(ctx context.Context, caller common.Address, rate uint64) (*RatesDTO, error) {
	return u.update(ctx, caller, settings.ValidateLatePenaltyRate(rate), func(s *settings.Settings) {
		s.LatePenaltyRate = rate
	})
}

func (u *Usecase) update(ctx context.Context, caller common.Address, invalid error, apply func(*settings.Settings)) (*RatesDTO, error) {
	if caller != u.d.Owner {
		return nil, loan.ErrNotOwner
	}
	if invalid != nil {
		return nil, invalid
	}
	ctx, release, err := u.d.Guard.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var out RatesDTO
	err = u.d.UoW.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Settings.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		apply(s)
		if err := r.Settings.Save(ctx, s); err != nil {
			return err
		}
		out = RatesDTO{PlatformFeeRate: s.PlatformFeeRate, LatePenaltyRate: s.LatePenaltyRate}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.d.Log.Info("rates updated", "platform_fee_rate", out.PlatformFeeRate, "late_penalty_rate", out.LatePenaltyRate)
	return &out, nil
}
