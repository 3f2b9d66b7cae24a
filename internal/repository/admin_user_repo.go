package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabbooking/internal/domain"
)

type AdminUserRepository struct {
	db *gorm.DB
}

func NewAdminUserRepository(db *gorm.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

type adminUserModel struct {
	ID                  string     `gorm:"column:id;primaryKey;size:36"`
	Email               string     `gorm:"column:email;size:255;uniqueIndex;not null"`
	PasswordHash        string     `gorm:"column:password_hash;not null"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;not null;default:0"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (adminUserModel) TableName() string { return "admin_users" }

func (m adminUserModel) toDomain() *domain.AdminUser {
	return &domain.AdminUser{
		ID:                  m.ID,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockedUntil:         m.LockedUntil,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *AdminUserRepository) Create(ctx context.Context, u *domain.AdminUser) error {
	m := adminUserModel{
		ID:           u.ID,
		Email:        normalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "admin user", domain.ErrInvalidCredentials)
	}
	*u = *m.toDomain()
	return nil
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	var m adminUserModel
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&m).Error; err != nil {
		return nil, translate(err, "admin user", domain.ErrInvalidCredentials)
	}
	return m.toDomain(), nil
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	var m adminUserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err, "admin user", domain.ErrUnauthorized)
	}
	return m.toDomain(), nil
}

// RecordFailedLogin bumps the counter and locks the account once it reaches maxAttempts.
func (r *AdminUserRepository) RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) (locked bool, err error) {
	var m adminUserModel
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		updates := map[string]any{
			"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
			"updated_at":            now,
		}
		if m.FailedLoginAttempts+1 >= maxAttempts {
			updates["locked_until"] = now.Add(lockFor)
			updates["failed_login_attempts"] = 0
			locked = true
		}
		return tx.Model(&adminUserModel{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return false, translate(err, "admin user", domain.ErrUnauthorized)
	}
	return locked, nil
}

func (r *AdminUserRepository) ResetFailedLogins(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&adminUserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"updated_at":            time.Now().UTC(),
		}).Error
	return translate(err, "admin user", domain.ErrUnauthorized)
}

func (r *AdminUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tx := r.db.WithContext(ctx).Model(&adminUserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		})
	if tx.Error != nil {
		return translate(tx.Error, "admin user", domain.ErrUnauthorized)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "admin user", Err: domain.ErrUnauthorized}
	}
	return nil
}
