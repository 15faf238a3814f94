package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medisphere/portal/internal/config"
	"github.com/medisphere/portal/internal/domain/consultation"
	"github.com/medisphere/portal/internal/domain/identity"
	"github.com/medisphere/portal/internal/domain/pharmacy"
	"github.com/medisphere/portal/internal/domain/prescribing"
	"github.com/medisphere/portal/internal/domain/records"
	"github.com/medisphere/portal/internal/domain/scheduling"
	"github.com/medisphere/portal/internal/platform/auth"
	"github.com/medisphere/portal/internal/platform/db"
	"github.com/medisphere/portal/internal/platform/middleware"
	"github.com/medisphere/portal/internal/platform/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "Medisphere healthcare portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts and sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			seeder := seed.New(
				identity.NewUserRepoPG(pool),
				scheduling.NewAppointmentRepoPG(pool),
				consultation.NewConsultationRepoPG(pool),
				prescribing.NewPrescriptionRepoPG(pool),
				records.NewMedicalRecordRepoPG(pool),
				pharmacy.NewOrderRepoPG(pool),
				logger,
			)
			if err := seeder.Run(ctx); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Seed complete.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Repositories
	userRepo := identity.NewUserRepoPG(pool)
	refChecker := identity.NewReferenceCheckerPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	consultRepo := consultation.NewConsultationRepoPG(pool)
	recordRepo := records.NewMedicalRecordRepoPG(pool)
	orderRepo := pharmacy.NewOrderRepoPG(pool)
	rxRepo := prescribing.NewPrescriptionRepoPG(pool)

	// Services
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	txr := db.RunnerFor(pool)

	identitySvc := identity.NewService(userRepo, refChecker, issuer)
	apptSvc := scheduling.NewService(apptRepo)
	consultSvc := consultation.NewService(consultRepo, apptRepo, txr)
	recordSvc := records.NewService(recordRepo)
	orderSvc := pharmacy.NewService(orderRepo, rxRepo, txr)
	rxSvc := prescribing.NewService(rxRepo, consultRepo, recordRepo, orderRepo, txr)

	// Optional demo data
	if cfg.SeedDemo {
		seeder := seed.New(userRepo, apptRepo, consultRepo, rxRepo, recordRepo, orderRepo, logger)
		if err := seeder.Run(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	// Health endpoints
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Public auth endpoints
	authGroup := e.Group("/auth")
	identity.NewHandler(identitySvc).RegisterAuthRoutes(authGroup)

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.Middleware(issuer))

	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)
	scheduling.NewHandler(apptSvc).RegisterRoutes(apiV1)
	consultation.NewHandler(consultSvc).RegisterRoutes(apiV1)
	records.NewHandler(recordSvc).RegisterRoutes(apiV1)
	pharmacy.NewHandler(orderSvc).RegisterRoutes(apiV1)
	prescribing.NewHandler(rxSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
