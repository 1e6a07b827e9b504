package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ocelo_loyalty_backend/internal/handlers"
	"ocelo_loyalty_backend/internal/middleware"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/internal/services"

	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth         services.AuthService
	Registration services.RegistrationService
	Customers    services.CustomerService
	Ledger       services.LedgerService
	Products     services.ProductService
	Settings     services.SettingService
	Reports      services.ReportService
	Storage      services.StorageService
}

// Options tunes the transport layer.
type Options struct {
	LoginRatePerMinute int
	// AllowedOrigins is a comma-separated CORS origin list.
	AllowedOrigins string
}

// NewEngine creates the gin engine with request logging, recovery, CORS and /ping.
func NewEngine(opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	var allowedOrigins []string
	for _, origin := range strings.Split(opts.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return engine
}

// NewServices loads the three collections from kv and wires the services over them.
func NewServices(ctx context.Context, kv repositories.KVRepository, defaults repositories.Defaults, staff services.StaffAccount, sender services.CodeSender) (Services, error) {
	// Initialize Repositories
	settingRepo, err := repositories.NewSettingRepository(ctx, kv, defaults.Config)
	if err != nil {
		return Services{}, fmt.Errorf("loading config: %w", err)
	}
	productRepo, err := repositories.NewProductRepository(ctx, kv, defaults.Products)
	if err != nil {
		return Services{}, fmt.Errorf("loading products: %w", err)
	}
	customerRepo, err := repositories.NewCustomerRepository(ctx, kv, defaults.Customers)
	if err != nil {
		return Services{}, fmt.Errorf("loading customers: %w", err)
	}

	// Initialize Services
	authService := services.NewAuthService(customerRepo, staff)
	if _, err := authService.MigrateLegacyPasswords(ctx); err != nil {
		utils.LogError(err, "Legacy password migration failed; affected customers cannot log in until it succeeds")
	}

	return Services{
		Auth:         authService,
		Registration: services.NewRegistrationService(customerRepo, services.RandomCodeIssuer{}, sender),
		Customers:    services.NewCustomerService(customerRepo),
		Ledger:       services.NewLedgerService(customerRepo, productRepo, settingRepo),
		Products:     services.NewProductService(productRepo),
		Settings:     services.NewSettingService(settingRepo),
		Reports:      services.NewReportService(customerRepo, productRepo),
		Storage:      services.NewStorageService(kv, settingRepo, productRepo, customerRepo),
	}, nil
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, svc Services, opts Options) {
	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Registration)
	customerHandler := handlers.NewCustomerHandler(svc.Customers, svc.Ledger)
	ledgerHandler := handlers.NewLedgerHandler(svc.Auth, svc.Ledger)
	productHandler := handlers.NewProductHandler(svc.Products)
	settingHandler := handlers.NewSettingHandler(svc.Settings)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	storageHandler := handlers.NewStorageHandler(svc.Storage)

	loginLimiter := middleware.NewIPRateLimiter(opts.LoginRatePerMinute)

	apiV1 := engine.Group("/api/v1")

	// Public routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler, loginLimiter)
	SetupPublicCatalogRoutes(apiV1, productHandler, settingHandler)

	// Setup authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.POST("/auth/logout", authHandler.Logout)

		SetupCustomerSelfRoutes(authenticated, authHandler, ledgerHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupSettingsRoutes(authenticated, settingHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupStorageRoutes(authenticated, storageHandler)
	}
}
