package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabbooking/internal/domain"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	Phone        string    `gorm:"column:phone;size:32;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name;size:120"`
	Email        *string   `gorm:"column:email;size:255"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (customerModel) TableName() string { return "customers" }

func (m customerModel) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:           m.ID,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Email:        derefString(m.Email),
		CreatedAt:    m.CreatedAt,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	m := customerModel{
		ID:           c.ID,
		Phone:        strings.TrimSpace(c.Phone),
		PasswordHash: c.PasswordHash,
		Name:         strings.TrimSpace(c.Name),
		Email:        nullableString(c.Email),
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "customer", domain.ErrCustomerNotFound)
	}
	*c = *m.toDomain()
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err, "customer", domain.ErrCustomerNotFound)
	}
	return m.toDomain(), nil
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).Where("phone = ?", strings.TrimSpace(phone)).First(&m).Error; err != nil {
		return nil, translate(err, "customer", domain.ErrCustomerNotFound)
	}
	return m.toDomain(), nil
}
