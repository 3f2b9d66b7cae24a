package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"cabbooking/internal/domain"
)

// RefreshTokenRepository provides DB access for refresh tokens.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

type refreshTokenModel struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          string     `gorm:"column:user_id;size:36;index;not null"`
	TokenHash       string     `gorm:"column:token_hash;size:64;uniqueIndex;not null"`
	FamilyID        string     `gorm:"column:family_id;size:36;index;not null"`
	Purpose         string     `gorm:"column:purpose;size:16;not null"`
	RotatedFrom     *int64     `gorm:"column:rotated_from"`
	ExpiresAt       time.Time  `gorm:"column:expires_at;index;not null"`
	UsedAt          *time.Time `gorm:"column:used_at"`
	RevokedAt       *time.Time `gorm:"column:revoked_at"`
	ReuseDetectedAt *time.Time `gorm:"column:reuse_detected_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

func (refreshTokenModel) TableName() string { return "refresh_tokens" }

func (m refreshTokenModel) toDomain() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:              m.ID,
		UserID:          m.UserID,
		TokenHash:       m.TokenHash,
		FamilyID:        m.FamilyID,
		Purpose:         domain.TokenPurpose(m.Purpose),
		RotatedFrom:     m.RotatedFrom,
		ExpiresAt:       m.ExpiresAt,
		UsedAt:          m.UsedAt,
		RevokedAt:       m.RevokedAt,
		ReuseDetectedAt: m.ReuseDetectedAt,
		CreatedAt:       m.CreatedAt,
	}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	m := refreshTokenModel{
		UserID:      t.UserID,
		TokenHash:   t.TokenHash,
		FamilyID:    t.FamilyID,
		Purpose:     string(t.Purpose),
		RotatedFrom: t.RotatedFrom,
		ExpiresAt:   t.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "refresh token", domain.ErrInvalidRefreshToken)
	}
	*t = *m.toDomain()
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var m refreshTokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&m).Error; err != nil {
		return nil, translate(err, "refresh token", domain.ErrInvalidRefreshToken)
	}
	return m.toDomain(), nil
}

// MarkUsed claims a token for rotation. It reports false when another caller got there first.
func (r *RefreshTokenRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&refreshTokenModel{}).
		Where("id = ? AND used_at IS NULL AND revoked_at IS NULL", id).
		Update("used_at", time.Now().UTC())
	if tx.Error != nil {
		return false, translate(tx.Error, "refresh token", domain.ErrInvalidRefreshToken)
	}
	return tx.RowsAffected == 1, nil
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string) error {
	err := r.db.WithContext(ctx).Model(&refreshTokenModel{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", time.Now().UTC()).Error
	return translate(err, "refresh token", domain.ErrInvalidRefreshToken)
}

// RevokeOtherFamilies revokes every live session of userID except keepFamily and
// returns the family ids it revoked.
func (r *RefreshTokenRepository) RevokeOtherFamilies(ctx context.Context, userID, keepFamily string) ([]string, error) {
	var families []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&refreshTokenModel{}).
			Where("user_id = ? AND family_id <> ? AND revoked_at IS NULL", userID, keepFamily).
			Distinct("family_id").
			Pluck("family_id", &families).Error; err != nil {
			return err
		}
		if len(families) == 0 {
			return nil
		}
		return tx.Model(&refreshTokenModel{}).
			Where("family_id IN ? AND revoked_at IS NULL", families).
			Update("revoked_at", time.Now().UTC()).Error
	})
	if err != nil {
		return nil, translate(err, "refresh token", domain.ErrInvalidRefreshToken)
	}
	return families, nil
}

// FamilyActive reports whether the session still holds an unrevoked, unexpired token.
func (r *RefreshTokenRepository) FamilyActive(ctx context.Context, familyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&refreshTokenModel{}).
		Where("family_id = ? AND revoked_at IS NULL AND expires_at > ?", familyID, time.Now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "refresh token", domain.ErrInvalidRefreshToken)
	}
	return count > 0, nil
}

func (r *RefreshTokenRepository) MarkReuse(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Model(&refreshTokenModel{}).
		Where("id = ?", id).
		Update("reuse_detected_at", time.Now().UTC()).Error
	return translate(err, "refresh token", domain.ErrInvalidRefreshToken)
}

// Purge deletes tokens that expired or were revoked before the cutoff.
func (r *RefreshTokenRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", before, before).
		Delete(&refreshTokenModel{})
	if tx.Error != nil {
		return 0, translate(tx.Error, "refresh token", domain.ErrInvalidRefreshToken)
	}
	return tx.RowsAffected, nil
}
