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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/orders"
	"storefront/internal/storage"
)

const cartKeyPrefix = "cart:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	db := client.Database(cfg.DBName)
	logger.Info("mongo connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(ctx, db, logger); err != nil {
		logger.Warn("index bootstrap incomplete", zap.Error(err))
	}

	productRepo := database.NewProductRepository(db)
	complementRepo := database.NewComplementRepository(db)
	orderRepo := database.NewOrderRepository(db)
	adminRepo := database.NewAdminRepository(db)
	sessionRepo := database.NewSessionRepository(db)

	seedAdmin(ctx, cfg, adminRepo, logger)

	cartRepo, closeCarts := cartRepository(ctx, cfg, logger)
	defer closeCarts()

	carts := cart.NewService(cartRepo, productRepo, logger)
	linker := notify.NewDeepLinker("", cfg.CountryCode, logger)
	submitter := orders.NewSubmitter(carts, orders.NewAssembler(cfg.DeliveryFee), orderRepo, productRepo, linker,
		orders.SubmitterConfig{
			BusinessPhone:       cfg.BusinessPhone,
			SoftFailPersistence: cfg.OrderSoftFailPersistence,
		}, logger)
	statuses := orders.NewStatusService(orderRepo, linker, logger)
	dashboard := orders.NewDashboard(orderRepo)
	images := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, logger)

	r := gin.New()
	r.Use(logging.Middleware(logger), logging.Recovery())
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", handlers.Health(func(ctx context.Context) error { return database.Ping(ctx, db) }))
	r.GET("/categories", handlers.GetCategories())
	r.GET("/products", handlers.GetProducts(productRepo))
	r.GET("/products/:id/complements", handlers.GetProductComplements(productRepo))

	fee := cfg.DeliveryFee
	r.GET("/cart", handlers.GetCart(carts, fee))
	r.POST("/cart/items", handlers.AddCartItem(carts, fee))
	r.POST("/cart/items/configured", handlers.AddConfiguredCartItem(carts, fee))
	r.DELETE("/cart/products/:productId", handlers.RemoveCartProduct(carts, fee))
	r.PATCH("/cart/lines/:lineId", handlers.UpdateCartLineQuantity(carts, fee))
	r.PATCH("/cart/lines/:lineId/observation", handlers.UpdateCartLineObservation(carts, fee))
	r.PUT("/cart/delivery-mode", handlers.SetCartDeliveryMode(carts, fee))
	r.DELETE("/cart", handlers.ClearCart(carts, fee))
	r.POST("/checkout", handlers.Checkout(submitter))

	auth := handlers.AuthSettings{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	r.POST("/admin/login", handlers.AdminLogin(adminRepo, sessionRepo, auth))
	r.POST("/admin/refresh", handlers.AdminRefresh(adminRepo, sessionRepo, auth))
	r.POST("/admin/logout", handlers.AdminLogout(sessionRepo))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/me", handlers.AdminMe(adminRepo))

		admin.GET("/products", handlers.GetAllProducts(productRepo))
		admin.POST("/products", handlers.CreateProduct(productRepo, images))
		admin.PUT("/products/:id", handlers.UpdateProduct(productRepo, images))
		admin.DELETE("/products/:id", handlers.DeleteProduct(productRepo, images))
		admin.PATCH("/products/:id/availability", handlers.SetProductAvailability(productRepo))

		admin.GET("/complements", handlers.GetComplements(productRepo))
		admin.GET("/category-complements/:category", handlers.GetCategoryComplements(complementRepo))
		admin.PUT("/category-complements/:category", handlers.ReplaceCategoryComplements(complementRepo, productRepo))

		admin.GET("/orders", handlers.GetOrders(orderRepo))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(statuses))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderRepo))

		admin.GET("/dashboard", handlers.GetDashboard(dashboard))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serve(server, client, logger)
}

// cartRepository picks redis when REDIS_URL is set and falls back to memory.
func cartRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (cart.Repository, func()) {
	if cfg.RedisURL == "" {
		logger.Info("carts kept in memory")
		return cart.NewMemoryRepository(), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("invalid REDIS_URL", zap.Error(err))
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	logger.Info("carts kept in redis", zap.Duration("ttl", cfg.CartTTL))
	return cart.NewRedisRepository(rdb, cartKeyPrefix, cfg.CartTTL), func() { _ = rdb.Close() }
}

func seedAdmin(ctx context.Context, cfg config.Config, admins *database.AdminRepository, logger *zap.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("admin password hash failed", zap.Error(err))
	}
	created, err := admins.EnsureAdmin(ctx, models.Admin{
		Email:        cfg.AdminEmail,
		Name:         "Admin",
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.Error("admin seed failed", zap.Error(err))
		return
	}
	if created {
		logger.Info("admin account created", zap.String("email", cfg.AdminEmail))
	}
}

func serve(server *http.Server, client *mongo.Client, logger *zap.Logger) {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
	}
}
