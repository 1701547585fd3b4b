package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/logging"
	"github.com/georgemunganga/accessories-admin/internal/modules/auth"
	"github.com/georgemunganga/accessories-admin/internal/modules/catalog"
	"github.com/georgemunganga/accessories-admin/internal/modules/dashboard"
	"github.com/georgemunganga/accessories-admin/internal/modules/media"
	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/modules/sales"
	"github.com/georgemunganga/accessories-admin/internal/modules/user"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin dashboard HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	userRepo := user.NewStoreRepository(store)
	if err := ensureBootstrapAdmin(ctx, user.NewService(userRepo), userRepo); err != nil {
		return err
	}

	router, err := newRouter(store, userRepo)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin dashboard starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires every module onto one chi router.
func newRouter(store docstore.Client, userRepo user.Repository) (*chi.Mux, error) {
	view, err := web.NewRenderer(logger, auth.CurrentUser)
	if err != nil {
		return nil, err
	}

	// ── Services ────────────────────────────────────────────
	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	guard := auth.NewGuard(authService, logger)

	catalogService := catalog.NewService(catalog.NewStoreRepository(store), logger.Named("catalog"))
	orderService := order.NewService(order.NewStoreRepository(store), logger.Named("order"))
	salesService := sales.NewService(orderService, logger.Named("sales"))
	dashboardService := dashboard.NewService(orderService, catalogService, logger.Named("dashboard"))

	authHandler := auth.NewHandler(authService, view, logger, cfg.Auth.SecureCookie)
	catalogHandler := catalog.NewHandler(catalogService, view, logger)
	orderHandler := order.NewHandler(orderService, view, logger)
	salesHandler := sales.NewHandler(salesService, view)
	dashboardHandler := dashboard.NewHandler(dashboardService, view)
	userHandler := user.NewHandler(user.NewService(userRepo))

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.Requests(logger))
	router.Use(middleware.Recoverer)

	authHandler.RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(guard.Pages)
		dashboardHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		salesHandler.RegisterRoutes(r)
		if assets, ok := store.(docstore.AssetReader); ok {
			media.NewHandler(assets, logger).RegisterRoutes(r)
		}
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterAPI(r)
		r.Group(func(r chi.Router) {
			r.Use(guard.API)
			catalogHandler.RegisterAPI(r)
			orderHandler.RegisterAPI(r)
			salesHandler.RegisterAPI(r)
			userHandler.RegisterAPI(r)
		})
	})

	return router, nil
}
