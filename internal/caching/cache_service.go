package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Credit balance caching
	GetCreditSummary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error)
	SetCreditSummary(ctx context.Context, companyID uuid.UUID, summary *models.CreditSummary, ttl time.Duration) error
	DeleteCreditSummary(ctx context.Context, companyID uuid.UUID) error

	// Dashboard caching
	GetDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error)
	SetDashboard(ctx context.Context, companyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error

	// Cache invalidation
	InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

// NewCacheServiceWithClient wraps an existing client.
func NewCacheServiceWithClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func creditKey(companyID uuid.UUID) string {
	return fmt.Sprintf("genzip:credits:%s", companyID.String())
}

func dashboardKey(companyID uuid.UUID) string {
	return fmt.Sprintf("genzip:dashboard:%s", companyID.String())
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetCreditSummary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	var summary models.CreditSummary
	found, err := r.getJSON(ctx, creditKey(companyID), &summary)
	if err != nil || !found {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetCreditSummary(ctx context.Context, companyID uuid.UUID, summary *models.CreditSummary, ttl time.Duration) error {
	return r.setJSON(ctx, creditKey(companyID), summary, ttl)
}

func (r *redisCacheService) DeleteCreditSummary(ctx context.Context, companyID uuid.UUID) error {
	return r.client.Del(ctx, creditKey(companyID)).Err()
}

func (r *redisCacheService) GetDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	found, err := r.getJSON(ctx, dashboardKey(companyID), &dashboard)
	if err != nil || !found {
		return nil, err
	}
	return &dashboard, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, companyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey(companyID), dashboard, ttl)
}

func (r *redisCacheService) InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error {
	return r.client.Del(ctx, creditKey(companyID), dashboardKey(companyID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("genzip:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
