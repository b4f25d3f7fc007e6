package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gameblog/internal/config"
	apphttp "gameblog/internal/http"
	"gameblog/internal/logging"
	"gameblog/internal/repository/sqlstore"
	"gameblog/internal/service"
	"gameblog/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlstore.Migrate(ctx, db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	userService := service.NewUserService(sqlstore.NewUserRepository(db))
	articleService := service.NewArticleService(db, sqlstore.NewArticleRepository)
	sessions := session.NewManager(session.Options{
		Secret:     []byte(cfg.Session.Secret),
		CookieName: cfg.Session.CookieName,
		TTL:        time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		Secure:     cfg.Session.Secure,
		Logger:     logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, articleService, sessions, db, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (database: %s)", cfg.Server.Addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
