package settings

import "context"

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	GetForUpdate(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
	// EnsureDefaults inserts the singleton row if it does not exist yet.
	EnsureDefaults(ctx context.Context, platformFeeRate, latePenaltyRate uint64) error
}
