package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"food-ordering/config"
	"food-ordering/handlers"
	"food-ordering/logger"
	"food-ordering/middleware"
	"food-ordering/repository"
	"food-ordering/routes"
	"food-ordering/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("food-ordering", false).Error("startup", "failed to load config", nil, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Service, cfg.Log.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("startup", "server exited with error", nil, err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Resources opened here are closed before
// it returns.
func run(ctx context.Context, cfg config.Config, log logger.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	st, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()

	publisher, err := config.OpenPublisher(cfg)
	if err != nil {
		return fmt.Errorf("connect %s event publisher: %w", cfg.Events.Driver, err)
	}
	defer publisher.Close()

	docs := repository.NewDocuments(st)
	db := repository.NewDatabaseRepository(docs, repository.DefaultSeed(services.Hasher(cfg.Auth.BcryptCost)), log)
	carts := repository.NewCartRepository(docs, log)
	coupons := repository.NewCouponRepository(docs, log)
	sessions := repository.NewSessionRepository(docs)

	if _, err := db.Load(ctx); err != nil {
		return fmt.Errorf("load database: %w", err)
	}

	auth := services.NewAuthService(db, sessions, cfg.Auth.BcryptCost, log)
	tokens := middleware.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL())
	h := handlers.New(handlers.Deps{
		Auth:     auth,
		Catalog:  services.NewCatalogService(db, log),
		Cart:     services.NewCartService(db, carts, coupons, log),
		Coupons:  services.NewCouponService(coupons, log),
		Orders:   services.NewOrderService(db, carts, coupons, publisher, log),
		Database: db,
		Tokens:   tokens,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS())
	routes.SetupRoutes(r, h, tokens, auth)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("startup", "server listening", map[string]any{
			"port":    cfg.Server.Port,
			"storage": cfg.Storage.Driver,
			"events":  cfg.Events.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "graceful shutdown failed", nil, err)
	}
	log.Info("shutdown", "server stopped", nil)
	return nil
}
