package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabbooking/internal/domain"
)

type CityRepository struct {
	db *gorm.DB
}

func NewCityRepository(db *gorm.DB) *CityRepository {
	return &CityRepository{db: db}
}

type cityModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Name      string    `gorm:"column:name;size:120;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (cityModel) TableName() string { return "cities" }

func toDomainCity(m cityModel) *domain.City {
	return &domain.City{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func (r *CityRepository) Create(ctx context.Context, c *domain.City) error {
	m := cityModel{ID: c.ID, Name: strings.TrimSpace(c.Name)}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "city", domain.ErrCityNotFound)
	}
	*c = *toDomainCity(m)
	return nil
}

func (r *CityRepository) List(ctx context.Context) ([]domain.City, error) {
	var rows []cityModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "city", domain.ErrCityNotFound)
	}
	out := make([]domain.City, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainCity(m))
	}
	return out, nil
}

// Resolve finds a city by id or, failing that, by case-insensitive name.
func (r *CityRepository) Resolve(ctx context.Context, idOrName string) (*domain.City, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return nil, domain.NotFoundError{Resource: "city", Err: domain.ErrCityNotFound}
	}

	var m cityModel
	err := r.db.WithContext(ctx).
		Where("id = ? OR LOWER(name) = ?", key, strings.ToLower(key)).
		Order("name ASC").
		First(&m).Error
	if err != nil {
		return nil, translate(err, "city", domain.ErrCityNotFound)
	}
	return toDomainCity(m), nil
}
