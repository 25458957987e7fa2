package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lipo541/paragliding-web-sub003/config"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) GetCountries(ctx context.Context) ([]domain.Country, error) {
	data, err := c.client.Get(ctx, countriesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var countries []domain.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (c *RedisCache) SetCountries(ctx context.Context, countries []domain.Country) error {
	payload, err := json.Marshal(countries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, countriesKey(), payload, c.catalogTTL).Err()
}

func (c *RedisCache) GetLocations(ctx context.Context, countryID string) ([]domain.Location, error) {
	data, err := c.client.Get(ctx, locationsKey(countryID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var locations []domain.Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *RedisCache) SetLocations(ctx context.Context, countryID string, locations []domain.Location) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationsKey(countryID), payload, c.catalogTTL).Err()
}

// InvalidateCatalog drops the cached lists so the next read goes to Postgres.
func (c *RedisCache) InvalidateCatalog(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "cache:catalog:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// AcquireCodeCheck de-duplicates concurrent promo lookups for one code.
func (c *RedisCache) AcquireCodeCheck(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, promoCheckKey(code), "checking", ttl).Result()
}

func (c *RedisCache) ReleaseCodeCheck(ctx context.Context, code string) error {
	return c.client.Del(ctx, promoCheckKey(code)).Err()
}

func countriesKey() string {
	return "cache:catalog:countries"
}

func locationsKey(countryID string) string {
	return fmt.Sprintf("cache:catalog:locations:%s", countryID)
}

func promoCheckKey(code string) string {
	return fmt.Sprintf("lock:promo:%s", code)
}
