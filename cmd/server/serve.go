package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/auth"
	"github.com/iliyamo/wine-dine/internal/config"
	"github.com/iliyamo/wine-dine/internal/database"
	"github.com/iliyamo/wine-dine/internal/handler"
	"github.com/iliyamo/wine-dine/internal/imagehost"
	"github.com/iliyamo/wine-dine/internal/middleware"
	"github.com/iliyamo/wine-dine/internal/moderation"
	"github.com/iliyamo/wine-dine/internal/repository"
	"github.com/iliyamo/wine-dine/internal/router"
	"github.com/iliyamo/wine-dine/internal/service"
)

var (
	serveMigrate      bool
	serveWithConsumer bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

// deps are the collaborators the HTTP surface is built from.
type deps struct {
	Cfg      config.Config
	Log      *zap.Logger
	Menu     handler.MenuStore
	Reviews  moderation.ReviewStore
	Messages moderation.MessageStore
	Users    handler.UserStore
	Tokens   handler.TokenStore
	Resets   handler.ResetStore
	Events   service.Publisher
	Images   imagehost.Uploader
}

// newEcho wires middleware, handlers and routes.
func newEcho(d deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	gate := auth.NewGate(d.Cfg.JWTSecret)
	mod := moderation.NewModerator(d.Reviews, d.Messages)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(d.Menu, mod, d.Events, d.Log))
	router.RegisterAuth(e, handler.NewAuthHandler(d.Cfg, d.Users, d.Tokens, d.Resets, d.Events, d.Log), gate)
	router.RegisterAdmin(e, handler.NewAdminHandler(d.Menu, mod, d.Images, d.Cfg.Images.MaxBytes(), d.Log), gate)
	return e
}

func openDB() (*sql.DB, error) {
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if serveMigrate {
		if err := database.Migrate(ctx, db, func(name string) {
			logger.Info("migration applied", zap.String("file", name))
		}); err != nil {
			return err
		}
	}

	d := deps{
		Cfg:      cfg,
		Log:      logger,
		Menu:     repository.NewMenuRepo(db),
		Reviews:  repository.NewReviewRepo(db),
		Messages: repository.NewMessageRepo(db),
		Users:    repository.NewUserRepo(db),
		Tokens:   repository.NewTokenRepo(db),
	}

	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		d.Resets = repository.NewResetTokenRepo(rdb)
	} else {
		logger.Warn("redis unavailable; password reset disabled", zap.String("addr", cfg.Redis.Addr))
	}

	pub := service.NewEventPublisher(cfg.Queue.URL, logger)
	defer pub.Close()
	d.Events = pub

	if cfg.Images.Enabled() {
		cld, err := imagehost.NewCloudinary(cfg.Images.CloudName, cfg.Images.UploadPreset, cfg.Images.APIKey, cfg.Images.MaxBytes())
		if err != nil {
			return err
		}
		d.Images = cld
	} else {
		logger.Warn("cloudinary not configured; image uploads disabled")
	}

	if serveWithConsumer {
		c := newConsumer()
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	}

	e := newEcho(d)
	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
