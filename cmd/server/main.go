package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ocelo_loyalty_backend/internal/database"
	"ocelo_loyalty_backend/internal/repositories"
	"ocelo_loyalty_backend/internal/router"
	"ocelo_loyalty_backend/internal/services"
	"ocelo_loyalty_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	// Initialize Logger
	utils.InitLogger(utils.Getenv("LOG_LEVEL", "info"))

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtSecret := utils.Getenv("JWT_SECRET", "")
	if jwtSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	utils.InitJWT(jwtSecret, utils.GetenvHours("JWT_TTL_HOURS", 72))

	// Initialize Database
	settings := database.SettingsFromEnv()
	db, err := database.Open(ctx, settings)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.ApplySchema(ctx, db, settings.Driver); err != nil {
		return err
	}

	defaults, err := repositories.LoadDefaultsFile(utils.Getenv("DEFAULTS_FILE", ""))
	if err != nil {
		return err
	}

	staff, err := services.StaffAccountFromEnv()
	if err != nil {
		return err
	}

	var sender services.CodeSender = services.LogCodeSender{}
	if apiKey := utils.Getenv("RESEND_API_KEY", ""); apiKey != "" {
		sender = services.NewResendCodeSender(apiKey, utils.Getenv("RESEND_BASE_URL", ""), utils.Getenv("MAIL_FROM", "Ocelo Vision <no-reply@ocelo.com>"))
		utils.LogInfo("Verification codes will be emailed")
	}

	kv := repositories.NewKVRepository(db, settings.Driver)
	svc, err := router.NewServices(ctx, kv, defaults, staff, sender)
	if err != nil {
		return err
	}

	if utils.Getenv("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	opts := router.Options{
		LoginRatePerMinute: utils.GetenvInt("LOGIN_RATE_PER_MINUTE", 10),
		AllowedOrigins:     utils.Getenv("CORS_ALLOWED_ORIGINS", ""),
	}
	engine := router.NewEngine(opts)
	router.Setup(engine, svc, opts)

	// Server port configuration
	port := utils.Getenv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": port, "driver": settings.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
