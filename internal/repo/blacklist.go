package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/docflow/internal/models"
)

// Revoke durably records the token as revoked. Revoking a token that is
// already on the blacklist is a no-op reported as success.
func (r *GormRepo) Revoke(ctx context.Context, token string, expiresAt int64) error {
	entry := models.RevokedToken{Token: token, ExpiresAt: expiresAt}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(&entry).Error
}

func (r *GormRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneExpired drops blacklist rows whose token has passed its own expiry
// and can never authorize again. Rows with an unknown expiry are kept.
func (r *GormRepo) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("expires_at > 0 AND expires_at <= ?", now.Unix()).
		Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
