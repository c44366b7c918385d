package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microlend-escrow/internal/domain/settings"
)

type SettingsRepository struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) *SettingsRepository { return &SettingsRepository{db: db} }

func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	return r.get(r.db.WithContext(ctx))
}

func (r *SettingsRepository) GetForUpdate(ctx context.Context) (*settings.Settings, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *SettingsRepository) get(q *gorm.DB) (*settings.Settings, error) {
	var out settings.Settings
	err := q.Where("id = ?", settings.SingletonID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, settings.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *settings.Settings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// EnsureDefaults never overwrites rates an admin already changed.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, platformFeeRate, latePenaltyRate uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&settings.Settings{
			ID:              settings.SingletonID,
			PlatformFeeRate: platformFeeRate,
			LatePenaltyRate: latePenaltyRate,
		}).Error
}
