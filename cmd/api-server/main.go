package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/deanAirre/saisoku-admin/internal/audit"
	"github.com/deanAirre/saisoku-admin/internal/auth"
	"github.com/deanAirre/saisoku-admin/internal/catalog"
	"github.com/deanAirre/saisoku-admin/internal/category"
	"github.com/deanAirre/saisoku-admin/internal/events"
	"github.com/deanAirre/saisoku-admin/internal/location"
	"github.com/deanAirre/saisoku-admin/internal/orders"
	"github.com/deanAirre/saisoku-admin/internal/storage"
	"github.com/deanAirre/saisoku-admin/pkg/database"
	"github.com/deanAirre/saisoku-admin/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	srvCfg := utils.LoadServerConfig()

	var logger *zap.Logger
	var err error
	if srvCfg.AppEnv == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := database.MustOpen(utils.LoadDatabaseConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	storageCfg := utils.LoadStorageConfig()
	ctx := context.Background()

	var photos, receipts storage.Store
	photoBucket, err := storage.NewBucket(ctx, storageCfg.PhotoBucket, storageCfg.CredentialsFile)
	if err != nil {
		logger.Warn("photo bucket unavailable, image uploads disabled", zap.Error(err))
	} else {
		defer photoBucket.Close()
		photos = photoBucket
	}
	receiptBucket, err := storage.NewBucket(ctx, storageCfg.ReceiptBucket, storageCfg.CredentialsFile)
	if err != nil {
		logger.Warn("receipt bucket unavailable, proof URLs not refreshed", zap.Error(err))
	} else {
		defer receiptBucket.Close()
		receipts = receiptBucket
	}

	if srvCfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	authCfg := utils.LoadAuthConfig()
	tokens := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokens).RegisterRoutes(router.Group("/auth"))

	authed := auth.AuthMiddleware(tokens, authRepo)

	hub := events.NewHub()
	router.GET("/ws", authed, events.WSHandler(hub, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
				"clients":  hub.Stats().Clients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"db":      "ok",
			"clients": hub.Stats().Clients,
		})
	})

	categoryRepo := category.NewRepo(db)

	// category default display modes layer over the legacy static table
	rules := func(ctx context.Context) (catalog.DisplayRules, error) {
		modes, err := categoryRepo.DisplayModesByName(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.DefaultDisplayRules().Merge(modes), nil
	}

	protected := router.Group("/")
	protected.Use(authed)

	catalogGroup := protected.Group("/", auth.Require(auth.CapManageCatalog))
	catalog.NewHandler(catalog.NewRepo(db), photos, rules, logger).RegisterRoutes(catalogGroup)
	category.NewHandler(categoryRepo).RegisterRoutes(catalogGroup)

	ordersGroup := protected.Group("/", auth.Require(auth.CapManageOrders))
	orders.NewHandler(orders.NewRepo(db), receipts, hub, logger).RegisterRoutes(ordersGroup)

	locationGroup := protected.Group("/", auth.Require(auth.CapManageStore))
	location.NewHandler(location.NewRepo(db)).RegisterRoutes(locationGroup)

	logsGroup := protected.Group("/", auth.Require(auth.CapViewLogs))
	audit.NewHandler(audit.NewRepo(db, logger)).RegisterRoutes(logsGroup)

	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srvCfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
