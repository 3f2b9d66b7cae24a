package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"cabbooking/internal/config"
	"cabbooking/internal/database"
	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/logger"
	"cabbooking/internal/pkg/password"
	"cabbooking/internal/repository"
)

type routeSeed struct {
	from, to     string
	four, six float64
}

var (
	seedCities = []string{"Mumbai", "Pune", "Nashik", "Lonavala", "Shirdi"}

	// prices are per direction; the reverse leg is seeded with the same table
	seedRoutes = []routeSeed{
		{"Mumbai", "Pune", 2500, 3200},
		{"Mumbai", "Nashik", 3000, 3800},
		{"Mumbai", "Lonavala", 1800, 2400},
		{"Mumbai", "Shirdi", 4500, 5600},
		{"Pune", "Nashik", 3200, 4000},
		{"Pune", "Shirdi", 3500, 4400},
	}

	seedZonePricing = domain.ZonePricing{
		FourSeaterRate:        800,
		SixSeaterRate:         1100,
		AirportFourSeaterRate: 1200,
		AirportSixSeaterRate:  1600,
	}
)

func main() {
	adminEmail := flag.String("admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "admin account to create")
	adminPassword := flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password for the admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New("cabbooking-seed", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, cfg, log, strings.TrimSpace(*adminEmail), *adminPassword); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("seed completed")
}

func seed(ctx context.Context, cfg *config.Config, log *zap.Logger, adminEmail, adminPassword string) error {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cities := repository.NewCityRepository(db)
	routes := repository.NewRouteRepository(db)
	zones := repository.NewZonePricingRepository(db)
	admins := repository.NewAdminUserRepository(db)

	ids := make(map[string]string, len(seedCities))
	for _, name := range seedCities {
		c, err := cities.Resolve(ctx, name)
		if domain.IsNotFound(err) {
			c = &domain.City{Name: name}
			err = cities.Create(ctx, c)
		}
		if err != nil {
			return fmt.Errorf("city %s: %w", name, err)
		}
		ids[name] = c.ID
	}
	log.Info("cities ready", zap.Int("count", len(ids)))

	n := 0
	for _, rs := range seedRoutes {
		for _, pair := range [][2]string{{rs.from, rs.to}, {rs.to, rs.from}} {
			_, err := routes.Upsert(ctx, &domain.Route{
				FromCityID:   ids[pair[0]],
				ToCityID:     ids[pair[1]],
				Price4Seater: rs.four,
				Price6Seater: rs.six,
			})
			if err != nil {
				return fmt.Errorf("route %s -> %s: %w", pair[0], pair[1], err)
			}
			n++
		}
	}
	log.Info("routes ready", zap.Int("count", n))

	if _, err := zones.Replace(ctx, seedZonePricing); err != nil {
		return fmt.Errorf("zone pricing: %w", err)
	}
	log.Info("zone pricing replaced")

	if adminEmail == "" {
		log.Info("no admin email given, skipping admin account")
		return nil
	}
	if _, err := admins.GetByEmail(ctx, adminEmail); err == nil {
		log.Info("admin already exists", zap.String("email", adminEmail))
		return nil
	} else if !domain.IsNotFound(err) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	if err := password.Validate(adminPassword); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}
	hash, err := password.Hash(adminPassword)
	if err != nil {
		return err
	}
	if err := admins.Create(ctx, &domain.AdminUser{Email: adminEmail, PasswordHash: hash}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin created", zap.String("email", adminEmail))
	return nil
}
