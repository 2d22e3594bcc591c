package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/suteetoe/krist-shop/cmd/output"
	"github.com/suteetoe/krist-shop/internal/handler"
	"github.com/suteetoe/krist-shop/internal/middleware"
	"github.com/suteetoe/krist-shop/internal/repository"
	"github.com/suteetoe/krist-shop/internal/service"
	"github.com/suteetoe/krist-shop/pkg/config"
	"github.com/suteetoe/krist-shop/pkg/database"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
	"github.com/suteetoe/krist-shop/pkg/logger"
	"github.com/suteetoe/krist-shop/pkg/notify"
	"github.com/suteetoe/krist-shop/pkg/payment"
	"github.com/suteetoe/krist-shop/pkg/realtime"
	"github.com/suteetoe/krist-shop/pkg/response"
	"github.com/suteetoe/krist-shop/pkg/storage"
	"github.com/suteetoe/krist-shop/pkg/validation"
	"github.com/suteetoe/krist-shop/prometheus"
)

const pingTimeout = 2 * time.Second

// serveCmd runs the HTTP API until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close(db)
		return serve(cfg, db)
	},
}

// gateways returns the optional third-party integrations, nil when they are not configured
func gateways(cfg *config.Config) (service.PaymentGateway, service.ImageStore) {
	log := logger.GetLogger()

	var gateway service.PaymentGateway
	if stripe, err := payment.NewStripe(cfg.Stripe); err == nil {
		gateway = stripe
	} else {
		log.Warn("Checkout disabled", zap.Error(err))
	}

	var images service.ImageStore
	if cloud, err := storage.NewCloudinary(cfg.Cloudinary); err == nil {
		images = cloud
	} else {
		log.Warn("Image uploads disabled", zap.Error(err))
	}
	return gateway, images
}

func newHandlers(cfg *config.Config, db *gorm.DB, tokens *jwtutil.JWTUtil, hub *realtime.Hub) handler.Handlers {
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	subcategories := repository.NewSubcategoryRepository(db)
	products := repository.NewProductRepository(db)
	gateway, images := gateways(cfg)

	return handler.Handlers{
		Health: handler.NewHealthHandler(cfg.ServiceName, func(ctx context.Context) error {
			return database.Ping(ctx, db, pingTimeout)
		}),
		Auth:          handler.NewAuthHandler(service.NewAuthService(users, tokens, notify.NewLogSender(), cfg.OTP.TTL)),
		Users:         handler.NewUserHandler(service.NewUserService(users)),
		Categories:    handler.NewCategoryHandler(service.NewCategoryService(categories)),
		Subcategories: handler.NewSubcategoryHandler(service.NewSubcategoryService(subcategories, categories)),
		Products:      handler.NewProductHandler(service.NewProductService(products, categories, subcategories)),
		Sizes:         handler.NewSizeHandler(service.NewSizeService(repository.NewSizeRepository(db))),
		Cart:          handler.NewCartHandler(service.NewCartService(repository.NewCartRepository(db), users, products)),
		Wishlist:      handler.NewWishlistHandler(service.NewWishlistService(repository.NewWishlistRepository(db), users, products)),
		Coupons:       handler.NewCouponHandler(service.NewCouponService(repository.NewCouponRepository(db))),
		Orders:        handler.NewOrderHandler(service.NewOrderService(repository.NewOrderRepository(db), users, products, hub)),
		Checkout:      handler.NewCheckoutHandler(service.NewCheckoutService(products, gateway, cfg.Stripe.ClientURL)),
		Uploads:       handler.NewUploadHandler(service.NewUploadService(images, cfg.Upload)),
		Banners:       handler.NewBannerHandler(service.NewBannerService(repository.NewBannerRepository(db), products)),
		Newsletter:    handler.NewNewsletterHandler(service.NewSubscribeService(repository.NewNewsletterRepository(db), users)),
		Contact:       handler.NewContactHandler(service.NewContactService(repository.NewContactRepository(db))),
		Feed:          hub,
	}
}

func serve(cfg *config.Config, db *gorm.DB) error {
	log := logger.GetLogger()

	if cfg.DB.AutoMigrate {
		if err := migrate(db); err != nil {
			log.Error("Failed to migrate database", zap.Error(err))
			return err
		}
	}

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		Secret:             cfg.JWT.Secret,
		AccessTTL:          cfg.JWT.AccessTTL,
		RefreshTTL:         cfg.JWT.RefreshTTL,
		RememberAccessTTL:  cfg.JWT.RememberAccessTTL,
		RememberRefreshTTL: cfg.JWT.RememberRefreshTTL,
		ResetTTL:           cfg.JWT.ResetTTL,
	})
	hub := realtime.NewHub(cfg.CORS.AllowOrigins)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = response.ErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)
	e.Use(logger.Middleware())

	handler.RegisterRoutes(e, newHandlers(cfg, db, tokens, hub), tokens)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()
	output.Success("%s listening on :%s", cfg.ServiceName, cfg.Server.Port)

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}
