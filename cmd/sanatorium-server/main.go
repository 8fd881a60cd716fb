package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sanatorium/sanatorium/internal/config"
	"github.com/sanatorium/sanatorium/internal/domain/booking"
	"github.com/sanatorium/sanatorium/internal/domain/catalog"
	"github.com/sanatorium/sanatorium/internal/domain/identity"
	"github.com/sanatorium/sanatorium/internal/domain/notes"
	"github.com/sanatorium/sanatorium/internal/domain/patients"
	"github.com/sanatorium/sanatorium/internal/domain/staff"
	"github.com/sanatorium/sanatorium/internal/platform/apierr"
	"github.com/sanatorium/sanatorium/internal/platform/auth"
	"github.com/sanatorium/sanatorium/internal/platform/db"
	"github.com/sanatorium/sanatorium/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "sanatorium-server",
		Short: "Medical-resort management API server",
	}

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			cancel()
			if err != nil {
				return err
			}
			defer pool.Close()

			secret := []byte(cfg.JWTSecret)
			if len(secret) == 0 {
				// Only reachable in development; Validate rejects this
				// configuration otherwise.
				secret = []byte("dev-secret")
			}
			issuer := auth.NewTokenIssuer(secret, time.Duration(cfg.TokenTTLHours)*time.Hour)

			// Repositories
			userRepo := identity.NewUserRepoPG(pool)
			patientRepo := patients.NewPatientRepoPG(pool)
			passportRepo := patients.NewPassportRepoPG(pool)
			personaRepo := staff.NewMedPersonaRepoPG(pool)
			offeringRepo := staff.NewOfferingRepoPG(pool)
			sanatoriumRepo := catalog.NewSanatoriumRepoPG(pool)
			serviceRepo := catalog.NewServiceRepoPG(pool)
			subKindRepo := catalog.NewSubKindRepoPG(pool)
			timetableRepo := catalog.NewTimetableRepoPG(pool)
			recordRepo := booking.NewRecordRepoPG(pool)
			recordServiceRepo := booking.NewRecordServiceRepoPG(pool)
			recordStaffRepo := booking.NewRecordStaffRepoPG(pool)
			noteRepo := notes.NewNoteRepoPG(pool)
			taskRepo := notes.NewTaskRepoPG(pool)

			// Services
			identitySvc := identity.NewService(userRepo, issuer)
			catalogSvc := catalog.NewCatalog(sanatoriumRepo, serviceRepo, subKindRepo, timetableRepo)
			patientsSvc := patients.NewService(patientRepo, passportRepo, &userDirectoryAdapter{svc: identitySvc})
			staffSvc := staff.NewService(personaRepo, offeringRepo, catalogSvc)
			bookingSvc := booking.NewService(recordRepo, recordServiceRepo, recordStaffRepo,
				patientsSvc, staffSvc, catalogSvc, db.NewTxRunner(pool))
			notesSvc := notes.NewService(noteRepo, taskRepo, patientsSvc, staffSvc)

			e := echo.New()
			e.HideBanner = true
			e.HTTPErrorHandler = apierr.HTTPErrorHandler(logger)

			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(logger))
			e.Use(middleware.Recovery(logger))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
				AllowOrigins: cfg.CORSOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
				AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
			}))

			e.GET("/health", func(c echo.Context) error {
				return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
			})
			e.GET("/health/db", db.HealthHandler(pool))

			authMW := auth.Middleware(issuer)
			if cfg.IsDev() {
				authMW = auth.DevMiddleware(issuer)
			}

			public := e.Group("/api/v1")
			api := e.Group("/api/v1", authMW)

			identity.NewHandler(identitySvc).RegisterRoutes(public, api)
			patients.NewHandler(patientsSvc).RegisterRoutes(api)
			staff.NewHandler(staffSvc).RegisterRoutes(api)
			catalog.NewHandler(catalogSvc).RegisterRoutes(api)
			booking.NewHandler(bookingSvc).RegisterRoutes(api)
			notes.NewHandler(notesSvc).RegisterRoutes(api)

			// Graceful shutdown on SIGINT/SIGTERM
			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
				<-sig
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := e.Shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("server shutdown")
				}
			}()

			logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
			if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				logger := newLogger(cfg)

				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()

				n, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(cmd.Context())
				if err != nil {
					return err
				}
				logger.Info().Int("applied", n).Msg("migrations complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				defer cancel()
				pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()

				statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied " + st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%03d %-40s %s\n", st.Version, st.Name, state)
				}
				return nil
			},
		},
	)

	return cmd
}

// userDirectoryAdapter narrows the identity service to the existence check
// the patient directory consumes.
type userDirectoryAdapter struct {
	svc *identity.Service
}

func (a *userDirectoryAdapter) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := a.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
