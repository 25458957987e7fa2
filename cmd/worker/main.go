package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/config"
	"github.com/lipo541/paragliding-web-sub003/internal/cache"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/email"
	"github.com/lipo541/paragliding-web-sub003/internal/kafka"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
	"github.com/lipo541/paragliding-web-sub003/internal/service/catalog"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// The worker settles what the API defers: promo usage is consumed only when a
// booking is confirmed, so an applied-then-abandoned code never burns a use.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTL)*time.Second)
	catalogRepo := repository.NewCatalogRepository(pool)
	catalogSvc := catalog.NewCatalogService(catalogRepo, redisCache, domain.Locale(cfg.Booking.DefaultLocale), logger)
	promoRepo := repository.NewPromoRepository(pool)
	emailSender := email.NewSender(logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warnf("decode event error: %v", err)
				return nil
			}

			if event.Type != kafka.EventBookingConfirmed {
				return nil
			}

			if event.PromoCode != "" {
				if err := promoRepo.IncrementUsage(ctx, event.PromoCode); err != nil {
					logger.WithFields(logrus.Fields{
						"reference": event.Reference,
						"code":      event.PromoCode,
					}).Warnf("settle promo usage: %v", err)
				}
			}

			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Warnf("consumer stopped: %v", err)
		}
	}()

	syncTicker := time.NewTicker(time.Duration(cfg.Worker.CacheSyncMinutes) * time.Minute)
	defer syncTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-syncTicker.C:
			if err := catalogSvc.Refresh(ctx); err != nil {
				logger.Warnf("catalog refresh error: %v", err)
				continue
			}
			logger.Debug("catalog caches refreshed")
		case s := <-sig:
			logger.Infof("received signal %v, shutting down", s)
			return
		}
	}
}
