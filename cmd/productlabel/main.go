package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_productlabel/api/v1"
	"go_productlabel/internal/auth"
	"go_productlabel/internal/cache"
	"go_productlabel/internal/config"
	"go_productlabel/internal/db"
	"go_productlabel/internal/image"
	"go_productlabel/internal/logging"
	"go_productlabel/internal/metrics"
	"go_productlabel/internal/service"
	"go_productlabel/internal/store"
	"go_productlabel/internal/warmer"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration (INI file when CONFIG_FILE is set, ENV otherwise)
	var (
		cfg *config.Config
		err error
	)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFromINI(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)
	log := logrus.NewEntry(logger).WithField("service", "productlabel")
	log.Info("Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN, log); err != nil {
		log.WithError(err).Fatal("Failed to initialize MySQL")
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.DB, log); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log); err != nil {
		log.WithError(err).Fatal("Failed to initialize Redis")
	}
	defer cache.Close()

	// 4. Wire services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	products := store.NewProductRepository(db.DB)
	labelService := service.NewProductLabelService(&service.ProductLabelConfig{
		Rules:    store.NewLabelRepository(db.DB),
		Products: products,
		Loader:   cache.NewLoader(cache.NewRedisKVStore(cache.Client), log, m),
		Images:   image.NewLocator(cfg.Label.ImageBaseURL),
		Observer: m,
		CacheTTL: time.Duration(cfg.Label.CacheTTLSec) * time.Second,
		Logger:   log,
	})

	if cfg.Warmer.Enabled {
		w := warmer.NewWorker(&warmer.Config{
			Labels:      labelService,
			Logger:      log,
			IntervalSec: cfg.Warmer.IntervalSec,
		})
		w.Start()
		defer w.Stop()
	}

	// 5. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1.SetupRouter(r, &v1.Deps{
		Products: products,
		Labels:   labelService,
		Verifier: auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Gatherer: reg,
		Logger:   log,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
