package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabbooking/internal/domain"
)

// activeZonePricingID is the primary key of the only zone_pricing row.
const activeZonePricingID = 1

type ZonePricingRepository struct {
	db *gorm.DB
}

func NewZonePricingRepository(db *gorm.DB) *ZonePricingRepository {
	return &ZonePricingRepository{db: db}
}

type zonePricingModel struct {
	ID                    int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	FourSeaterRate        float64   `gorm:"column:four_seater_rate;not null"`
	SixSeaterRate         float64   `gorm:"column:six_seater_rate;not null"`
	AirportFourSeaterRate float64   `gorm:"column:airport_four_seater_rate;not null"`
	AirportSixSeaterRate  float64   `gorm:"column:airport_six_seater_rate;not null"`
	CreatedAt             time.Time `gorm:"column:created_at"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (zonePricingModel) TableName() string { return "zone_pricing" }

func (r *ZonePricingRepository) GetActive(ctx context.Context) (*domain.ZonePricing, error) {
	var m zonePricingModel
	if err := r.db.WithContext(ctx).Where("id = ?", activeZonePricingID).First(&m).Error; err != nil {
		return nil, translate(err, "local pricing", domain.ErrPricingUnavailable)
	}
	return &domain.ZonePricing{
		FourSeaterRate:        m.FourSeaterRate,
		SixSeaterRate:         m.SixSeaterRate,
		AirportFourSeaterRate: m.AirportFourSeaterRate,
		AirportSixSeaterRate:  m.AirportSixSeaterRate,
		UpdatedAt:             m.UpdatedAt,
	}, nil
}

// Replace overwrites the active row in a single upsert.
func (r *ZonePricingRepository) Replace(ctx context.Context, z domain.ZonePricing) (*domain.ZonePricing, error) {
	now := time.Now().UTC()
	m := zonePricingModel{
		ID:                    activeZonePricingID,
		FourSeaterRate:        z.FourSeaterRate,
		SixSeaterRate:         z.SixSeaterRate,
		AirportFourSeaterRate: z.AirportFourSeaterRate,
		AirportSixSeaterRate:  z.AirportSixSeaterRate,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"four_seater_rate", "six_seater_rate",
			"airport_four_seater_rate", "airport_six_seater_rate",
			"updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return nil, translate(err, "local pricing", domain.ErrPricingUnavailable)
	}
	return r.GetActive(ctx)
}
