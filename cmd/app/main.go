package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/config"
	"github.com/lipo541/paragliding-web-sub003/internal/bootstrap"
	"github.com/lipo541/paragliding-web-sub003/internal/cache"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/kafka"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
	"github.com/lipo541/paragliding-web-sub003/internal/service/booking"
	"github.com/lipo541/paragliding-web-sub003/internal/service/catalog"
	"github.com/lipo541/paragliding-web-sub003/internal/service/promo"
	"github.com/lipo541/paragliding-web-sub003/internal/service/scope"
	"github.com/lipo541/paragliding-web-sub003/internal/service/session"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)
	pilotRepo := repository.NewPilotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	catalogSvc := catalog.NewCatalogService(catalogRepo, redisCache, domain.Locale(cfg.Booking.DefaultLocale), logger)
	scopeResolver := scope.NewResolver(pilotRepo)
	promoValidator := promo.NewValidator(
		promoRepo,
		promo.WithGuard(redisCache, time.Duration(cfg.Booking.PromoCheckTTL)*time.Second),
	)
	submitter := booking.NewService(
		bookingRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	currency, err := domain.ParseCurrency(cfg.Booking.DefaultCurrency)
	if err != nil {
		logger.Fatalf("invalid default currency: %v", err)
	}

	engine := session.NewEngine(
		catalogSvc,
		scopeResolver,
		promoValidator,
		submitter,
		logger,
		session.WithDefaults(currency, domain.Locale(cfg.Booking.DefaultLocale)),
		session.WithIdleTTL(time.Duration(cfg.Session.IdleTTLMinutes)*time.Minute),
	)
	engine.StartSweeper(ctx, time.Minute)

	logger.Infof("starting booking API on %s", cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, catalogSvc, engine); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
