package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"linkup/internal/config"
	"linkup/internal/domain/auth"
	"linkup/internal/domain/floormap"
	"linkup/internal/domain/reservation"
	"linkup/internal/domain/resource"
	"linkup/internal/middleware"
	"linkup/internal/pkg/clock"
	"linkup/internal/pkg/jwt"
	"linkup/internal/pkg/lock"
	"linkup/internal/queue"
)

// Options carries the infrastructure the HTTP application is built on.
// Clock defaults to the wall clock in cfg.Location; Redis and Events may
// be nil.
type Options struct {
	Config *config.Config
	DB     *gorm.DB
	Clock  clock.Clock
	Redis  *redis.Client
	Events queue.Sink
}

// App is the assembled HTTP application.
type App struct {
	Engine       *gin.Engine
	JWT          *jwt.Service
	Hub          *floormap.Hub
	Sweeper      *reservation.Sweeper
	Reservations *reservation.Service
}

// Models lists every table the application migrates.
func Models() []any {
	models := []any{&auth.UserModel{}}
	models = append(models, resource.Models()...)
	return append(models, reservation.Models()...)
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil || opts.DB == nil {
		return nil, fmt.Errorf("app: config and db are required")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.New(cfg.Location)
	}

	schedule, err := reservation.ParseSchedule(cfg.DayStart, cfg.DayEnd, cfg.OpenFrom, cfg.OpenUntil, cfg.SlotLength, cfg.SlotStep)
	if err != nil {
		return nil, fmt.Errorf("app: schedule: %w", err)
	}

	hub := floormap.NewHub(cfg.CORSOrigins)
	events := queue.Fanout{hub, opts.Events}

	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	locks := lock.NewKeyed()

	registry := resource.NewRegistry(opts.DB)
	ledger := reservation.NewRepository(opts.DB)
	sweeper := reservation.NewSweeper(opts.DB, registry, ledger, clk, events)

	reservationService := reservation.NewService(reservation.Deps{
		DB:       opts.DB,
		Registry: registry,
		Ledger:   ledger,
		Sweeper:  sweeper,
		Schedule: schedule,
		Locks:    locks,
		Clock:    clk,
		Events:   events,
	})
	resourceService := resource.NewService(registry, ledger, sweeper, locks, clk, events)
	floormapService := floormap.NewService(registry, reservationService)
	authService := auth.NewService(auth.NewUserRepository(opts.DB), jwtService)

	authHandler := auth.NewHandler(authService)
	reservationHandler := reservation.NewHandler(reservationService)
	resourceHandler := resource.NewHandler(resourceService)
	floormapHandler := floormap.NewHandler(floormapService, hub)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": "healthy"})
	})

	v1 := r.Group("/api/v1")

	// Public routes
	authHandler.RegisterPublicRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		reservationHandler.RegisterRoutes(protected, middleware.RateLimit(cfg.RateLimit, opts.Redis))
		resourceHandler.RegisterRoutes(protected)
		floormapHandler.RegisterRoutes(protected)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(middleware.StaffOnly())
		{
			reservationHandler.RegisterAdminRoutes(adminGroup)
		}
	}

	return &App{
		Engine:       r,
		JWT:          jwtService,
		Hub:          hub,
		Sweeper:      sweeper,
		Reservations: reservationService,
	}, nil
}
