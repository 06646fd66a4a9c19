package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/docflow/internal/config"
	"github.com/Skotchmaster/docflow/internal/es"
	"github.com/Skotchmaster/docflow/internal/httpserver"
	"github.com/Skotchmaster/docflow/internal/logging"
	authmw "github.com/Skotchmaster/docflow/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/docflow/internal/middleware/logging"
	"github.com/Skotchmaster/docflow/internal/mykafka"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/service"
	"github.com/Skotchmaster/docflow/internal/storage"
	"github.com/Skotchmaster/docflow/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	prod := mykafka.NewProducer(cfg.KafkaBrokers)

	index := &es.DocumentIndex{Index: "documents"}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatal(err)
		}
		index.ES = esClient
	}

	r := repo.New(db)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Issuer: issuer, Producer: prod}},
		UserHandler:     &httpserver.UsersHTTP{Svc: &service.UserService{Repo: r}},
		DocumentHandler: &httpserver.DocumentsHTTP{Svc: &service.DocumentService{Repo: r, Files: files, Index: index, Producer: prod}},
		Gate:            authmw.NewGate(issuer, r),
	}
	httpserver.Register(e, &deps)

	pruneCtx, stopPruner := context.WithCancel(context.Background())
	go pruneBlacklist(pruneCtx, r, cfg.PruneInterval, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopPruner()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

// pruneBlacklist periodically drops revoked tokens that have passed their
// own expiry and can never authorize again.
func pruneBlacklist(ctx context.Context, r *repo.GormRepo, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := r.PruneExpired(ctx, time.Now())
			if err != nil {
				logger.Warn("blacklist_prune_failed", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Info("blacklist_pruned", "entries", pruned)
			}
		}
	}
}
