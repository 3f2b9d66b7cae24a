package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabbooking/internal/domain"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// routeModel is unique per ordered (from, to) pair.
type routeModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	FromCityID   string    `gorm:"column:from_city_id;size:36;not null;uniqueIndex:idx_routes_pair,priority:1"`
	ToCityID     string    `gorm:"column:to_city_id;size:36;not null;uniqueIndex:idx_routes_pair,priority:2"`
	Price4Seater float64   `gorm:"column:price_4_seater;not null"`
	Price6Seater float64   `gorm:"column:price_6_seater;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (routeModel) TableName() string { return "routes" }

type routeRow struct {
	routeModel
	FromCity string `gorm:"column:from_city"`
	ToCity   string `gorm:"column:to_city"`
}

func toDomainRoute(m routeModel) *domain.Route {
	return &domain.Route{
		ID:           m.ID,
		FromCityID:   m.FromCityID,
		ToCityID:     m.ToCityID,
		Price4Seater: m.Price4Seater,
		Price6Seater: m.Price6Seater,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

const routeSelect = `
SELECT r.id, r.from_city_id, r.to_city_id, r.price_4_seater, r.price_6_seater,
       r.created_at, r.updated_at, fc.name AS from_city, tc.name AS to_city
FROM routes r
JOIN cities fc ON fc.id = r.from_city_id
JOIN cities tc ON tc.id = r.to_city_id
`

// FindByPair looks up the exact ordered pair; the reverse direction is never consulted.
func (r *RouteRepository) FindByPair(ctx context.Context, fromCityID, toCityID string) (*domain.Route, error) {
	var rows []routeRow
	err := r.db.WithContext(ctx).
		Raw(routeSelect+"WHERE r.from_city_id = ? AND r.to_city_id = ?", fromCityID, toCityID).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "route", domain.ErrRouteNotFound)
	}
	if len(rows) == 0 {
		return nil, domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
	}
	return rowToRoute(rows[0]), nil
}

func (r *RouteRepository) List(ctx context.Context) ([]domain.Route, error) {
	var rows []routeRow
	err := r.db.WithContext(ctx).
		Raw(routeSelect + "ORDER BY fc.name ASC, tc.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "route", domain.ErrRouteNotFound)
	}
	out := make([]domain.Route, 0, len(rows))
	for _, row := range rows {
		out = append(out, *rowToRoute(row))
	}
	return out, nil
}

// Upsert creates the route or replaces the prices of the existing pair.
func (r *RouteRepository) Upsert(ctx context.Context, rt *domain.Route) (*domain.Route, error) {
	now := time.Now().UTC()
	m := routeModel{
		ID:           uuid.NewString(),
		FromCityID:   rt.FromCityID,
		ToCityID:     rt.ToCityID,
		Price4Seater: rt.Price4Seater,
		Price6Seater: rt.Price6Seater,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_city_id"}, {Name: "to_city_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_4_seater", "price_6_seater", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return nil, translate(err, "route", domain.ErrRouteNotFound)
	}
	return r.FindByPair(ctx, rt.FromCityID, rt.ToCityID)
}

func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&routeModel{})
	if tx.Error != nil {
		return translate(tx.Error, "route", domain.ErrRouteNotFound)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
	}
	return nil
}

func rowToRoute(row routeRow) *domain.Route {
	rt := toDomainRoute(row.routeModel)
	rt.FromCity = row.FromCity
	rt.ToCity = row.ToCity
	return rt
}
