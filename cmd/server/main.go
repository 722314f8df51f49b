package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"phoneshop_back_end/internal/cache"
	"phoneshop_back_end/internal/config"
	"phoneshop_back_end/internal/database"
	"phoneshop_back_end/internal/handlers"
	"phoneshop_back_end/internal/logger"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/repository"
	"phoneshop_back_end/internal/routes"
	"phoneshop_back_end/internal/services"
	"phoneshop_back_end/internal/shutdown"
	"phoneshop_back_end/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "phoneshop", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("❌ Arrêt du serveur", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	clients, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer clients.Close()

	// Repositories
	categories := repository.NewCategoryRepository(clients.Scylla)
	products := repository.NewProductRepository(clients.Scylla)
	orders := repository.NewOrderRepository(clients.Scylla)
	payments := repository.NewPaymentRepository(clients.Scylla)
	users := repository.NewUserRepository(clients.Scylla)
	addresses := repository.NewAddressRepository(clients.Scylla)
	tokens := repository.NewResetTokenRepository(clients.Scylla)
	carts := cache.NewCartStore(clients.Redis)

	// Services externes optionnels
	catalogDeps := services.CatalogDeps{
		Categories: categories,
		Products:   products,
		Orders:     orders,
		Cache:      cache.NewJSONCache(clients.Redis, log),
		Log:        log,
	}
	if clients.Elastic != nil {
		catalogDeps.Index = services.NewElasticIndex(clients.Elastic, cfg.Elastic.Index, log)
	}
	if clients.MinIO != nil {
		catalogDeps.Images = services.NewMinIOImageStore(clients.MinIO, cfg.MinIO.Bucket, cfg.MinIO.PublicURL())
	}
	var cards services.CardGateway
	if cfg.StripeSecretKey != "" {
		cards = services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeCurrency)
		log.Info("✅ Stripe initialisé")
	} else {
		log.Warn("⚠️ STRIPE_SECRET_KEY absent, paiement par carte désactivé")
	}

	jwtm := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	catalog := services.NewCatalogService(catalogDeps)
	cartSvc := services.NewCartService(carts, products)
	orderSvc := services.NewOrderService(orders, products, carts, log)
	paymentSvc := services.NewPaymentService(payments, orderSvc, cards, cfg.Bank, log)
	userSvc := services.NewUserService(services.UserDeps{
		Users:       users,
		Addresses:   addresses,
		Tokens:      tokens,
		Orders:      orders,
		JWT:         jwtm,
		Mailer:      utils.NewSMTPMailer(cfg.SMTP, log),
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	})

	if err := userSvc.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(log), middleware.CORS(cfg.CORSOrigins))

	routes.RegisterRoutes(r, routes.Deps{
		JWT:        jwtm,
		RateLimit:  middleware.NewRateLimit(cache.NewRateLimiter(clients.Redis), log),
		Upgrader:   handlers.NewUpgrader(cfg.CORSOrigins),
		Log:        log,
		Auth:       handlers.NewAuthHandler(userSvc, log),
		Users:      handlers.NewUserHandler(userSvc, log),
		Categories: handlers.NewCategoryHandler(catalog, log),
		Products:   handlers.NewProductHandler(catalog, log),
		Carts:      handlers.NewCartHandler(cartSvc, orderSvc, log),
		Orders:     handlers.NewOrderHandler(orderSvc, log),
		Payments:   handlers.NewPaymentHandler(paymentSvc, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Serveur lancé", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Arrêt en cours...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
