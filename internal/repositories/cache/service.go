package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talkastro/internal/models"

	"github.com/redis/go-redis/v9"
)

// A read racing a concurrent mutation can re-fill the cache with the
// pre-commit snapshot after the writer's invalidation; the TTL is the
// upper bound on how long that stale (but self-consistent) view lives.
const walletTTL = time.Minute

// CacheService wraps redis with JSON marshaling and key conventions.
// Everything cached here is a derived view (wallet snapshots, the admin
// stats snapshot); the database stays the source of truth and writers
// invalidate rather than update.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds keys like "wallet:user:42".
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// WalletKey is the canonical cache key for a user's wallet snapshot.
func (s *CacheService) WalletKey(userID uint) string {
	return s.GenerateKey("wallet", "user", userID)
}

// GetWallet reads a cached wallet snapshot. The bool is false on a miss.
func (s *CacheService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, bool, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, s.WalletKey(userID), &wallet)
	if err != nil || !found {
		return nil, false, err
	}
	return &wallet, true, nil
}

// CacheWallet stores a wallet snapshot with a short TTL.
func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	return s.SetWithTTL(ctx, s.WalletKey(wallet.UserID), wallet, walletTTL)
}

// InvalidateWallet drops the cached wallet snapshot for a user. Called by
// the ledger after every committed mutation.
func (s *CacheService) InvalidateWallet(ctx context.Context, userID uint) error {
	return s.Delete(ctx, s.WalletKey(userID))
}

// InvalidateAdminStats drops the cached admin snapshot so the next stats
// read recomputes revenue and counts.
func (s *CacheService) InvalidateAdminStats(ctx context.Context) error {
	return s.Delete(ctx, s.GenerateKey("admin", "stats", "snapshot"))
}

// Ping checks redis connectivity, used by the health endpoint.
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
