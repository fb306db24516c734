package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ovechkin-dev/marketplace/internal/config"
	"github.com/ovechkin-dev/marketplace/internal/es"
	"github.com/ovechkin-dev/marketplace/internal/httpserver"
	"github.com/ovechkin-dev/marketplace/internal/logging"
	loggingmw "github.com/ovechkin-dev/marketplace/internal/middleware/logging"
	"github.com/ovechkin-dev/marketplace/internal/mykafka"
	"github.com/ovechkin-dev/marketplace/internal/repo"
	"github.com/ovechkin-dev/marketplace/internal/service"
	"github.com/ovechkin-dev/marketplace/internal/storage"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()

	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	gormRepo := repo.New(db)

	var producer *mykafka.Producer
	var events service.Publisher
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		events = producer
	}

	var uploader service.Uploader
	if configuration.S3_ENDPOINT != "" {
		store, err := storage.NewObjectStore(ctx, configuration)
		if err != nil {
			log.Fatalf("object store init: %v", err)
		}
		uploader = store
	}

	var productIndex *es.ProductIndex
	var indexer service.Indexer
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		productIndex = &es.ProductIndex{ES: esClient, Index: "products"}
		indexer = productIndex
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:      gormRepo,
			JWTSecret: jwtSecret,
			TokenTTL:  configuration.TokenTTL,
			Events:    events,
		}},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{
			Repo: gormRepo,
		}},
		ProductHandler: &httpserver.ProductHTTP{Svc: &service.ProductService{
			Repo:   gormRepo,
			Store:  uploader,
			Index:  indexer,
			Events: events,
		}},
		JWTSecret: jwtSecret,
	}
	if productIndex != nil {
		deps.SearchHandler = &httpserver.SearchHTTP{Index: productIndex}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.ServerPort,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
