package router

import (
	"ocelo_loyalty_backend/internal/handlers"
	"ocelo_loyalty_backend/internal/middleware"
	"ocelo_loyalty_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up login and registration, throttled per client IP.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, limiter *middleware.IPRateLimiter) {
	group.Use(limiter.Middleware())
	{
		group.POST("/staff/login", authHandler.StaffLogin)
		group.POST("/login", authHandler.CustomerLogin)
		group.POST("/register", authHandler.StartRegistration)
		group.POST("/register/verify", authHandler.VerifyRegistration)
	}
}

// SetupPublicCatalogRoutes exposes the branding config and the catalog without a session.
func SetupPublicCatalogRoutes(apiGroup *gin.RouterGroup, productHandler *handlers.ProductHandler, settingHandler *handlers.SettingHandler) {
	apiGroup.GET("/config", settingHandler.GetConfig)
	apiGroup.GET("/products", productHandler.GetProducts)
	apiGroup.GET("/products/:id", productHandler.GetProductByID)
}

// SetupCustomerSelfRoutes sets up the routes a logged-in customer uses on their own account.
func SetupCustomerSelfRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, ledgerHandler *handlers.LedgerHandler) {
	meRoutes := authenticatedGroup.Group("/me")
	meRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCustomer))
	{
		meRoutes.GET("", authHandler.GetCurrentCustomer)
		meRoutes.GET("/points", ledgerHandler.GetMyPoints)
		meRoutes.GET("/points/expiring", ledgerHandler.GetExpiringPoints)
		meRoutes.POST("/redeem", ledgerHandler.Redeem)
		meRoutes.GET("/referrals", ledgerHandler.GetMyReferrals)
		meRoutes.GET("/share-link", ledgerHandler.GetShareLink)
	}
}

// SetupCustomerRoutes sets up the staff customer administration routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleStaff))
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
		customerRoutes.POST("/:id/purchases", customerHandler.RecordPurchase)
		customerRoutes.GET("/:id/audit", customerHandler.AuditCustomer)
	}
}

// SetupProductRoutes sets up the staff catalog write routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleStaff))
	{
		productRoutes.POST("", productHandler.CreateProduct)
		productRoutes.PUT("/:id", productHandler.UpdateProduct)
		productRoutes.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupSettingsRoutes sets up the config write route.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingsRoutes := authenticatedGroup.Group("/config")
	settingsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleStaff))
	{
		settingsRoutes.PUT("", settingHandler.ReplaceConfig)
	}
}

// SetupReportRoutes sets up the dashboard and reporting routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	staffOnly := middleware.RoleAuthMiddleware(models.RoleStaff)
	authenticatedGroup.GET("/dashboard/summary", staffOnly, reportHandler.GetDashboardSummary)
	authenticatedGroup.GET("/reports/referrals", staffOnly, reportHandler.GetReferralReport)
}

// SetupStorageRoutes sets up the staff storage maintenance routes.
func SetupStorageRoutes(authenticatedGroup *gin.RouterGroup, storageHandler *handlers.StorageHandler) {
	storageRoutes := authenticatedGroup.Group("/storage")
	storageRoutes.Use(middleware.RoleAuthMiddleware(models.RoleStaff))
	{
		storageRoutes.GET("", storageHandler.GetStatus)
		storageRoutes.POST("/reload", storageHandler.Reload)
		storageRoutes.DELETE("/:collection", storageHandler.ResetCollection)
	}
}
