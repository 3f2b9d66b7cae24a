package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabbooking/internal/config"
	"cabbooking/internal/database"
	"cabbooking/internal/events"
	"cabbooking/internal/metrics"
	"cabbooking/internal/middleware"
	"cabbooking/internal/modules/auth"
	"cabbooking/internal/modules/booking"
	"cabbooking/internal/modules/customer"
	"cabbooking/internal/modules/fare"
	"cabbooking/internal/modules/pricing"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/response"
	"cabbooking/internal/repository"
)

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Publisher events.Publisher
	// Mailer defaults to the dev log mailer.
	Mailer auth.Mailer
}

// Server is the assembled HTTP API.
type Server struct {
	Engine *gin.Engine
	Hub    *auth.Hub
}

func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	cfg := d.Config

	cityRepo := repository.NewCityRepository(d.DB)
	routeRepo := repository.NewRouteRepository(d.DB)
	zoneRepo := repository.NewZonePricingRepository(d.DB)
	customerRepo := repository.NewCustomerRepository(d.DB)
	bookingRepo := repository.NewBookingRepository(d.DB)
	adminRepo := repository.NewAdminUserRepository(d.DB)
	tokenRepo := repository.NewRefreshTokenRepository(d.DB)

	accessJWT := jwt.New(cfg.JWTSecret, cfg.JWTAccessTTL)
	recoveryJWT := jwt.New(cfg.JWTSecret, cfg.RecoveryTTL)

	mailer := d.Mailer
	if mailer == nil {
		mailer = auth.NewDevLogMailer(cfg.DevMailer, log.Named("mailer"))
	}

	hub := auth.NewHub(log.Named("session_events"))
	authService := auth.NewService(adminRepo, tokenRepo, accessJWT, recoveryJWT, mailer, hub, auth.Options{
		RefreshTTL:       cfg.RefreshTTL,
		RecoveryTTL:      cfg.RecoveryTTL,
		Pepper:           cfg.RefreshTokenPepper,
		ResetRedirectURL: cfg.ResetRedirectURL,
	}, log.Named("auth"))

	calc := fare.NewCalculator(cityRepo, routeRepo, zoneRepo)
	lifecycle := booking.NewLifecycle(bookingRepo, customerRepo, calc, publisher, log.Named("booking"))
	customerService := customer.NewService(customerRepo, accessJWT)
	pricingService := pricing.NewService(cityRepo, routeRepo, zoneRepo, log.Named("pricing"))

	authHandler := auth.NewHandler(authService, accessJWT, hub, log.Named("auth"))
	fareHandler := fare.NewHandler(calc)
	bookingHandler := booking.NewHandler(lifecycle)
	customerHandler := customer.NewHandler(customerService)
	pricingHandler := pricing.NewHandler(pricingService)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.CORS(cfg.CORSAllowedOrigins), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), d.DB); err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1.Group("/auth"))
		fareHandler.RegisterRoutes(v1)
		customerHandler.RegisterRoutes(v1)

		customers := v1.Group("")
		customers.Use(middleware.JWTAuth(accessJWT), middleware.CustomerOnly())
		bookingHandler.RegisterCustomerRoutes(customers)

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(accessJWT), middleware.SessionActive(authService), middleware.AdminOnly())
		{
			bookingHandler.RegisterAdminRoutes(admin)
			pricingHandler.RegisterAdminRoutes(admin)
		}
	}

	return &Server{Engine: r, Hub: hub}
}
