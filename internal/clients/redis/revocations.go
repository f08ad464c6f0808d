package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

// RevocationList is a short-lived denylist keyed by token id (JTI). Entries
// expire with the token they revoke, so the set never grows past one token
// lifetime. Tokens stay stateless otherwise.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}

type revocationList struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewRevocationList connects to REDIS_ADDR. Callers treat a missing
// REDIS_ADDR as "revocation disabled" and pass a nil list around.
func NewRevocationList(log *logger.Logger) (RevocationList, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_REVOCATION_PREFIX"))
	if prefix == "" {
		prefix = "revoked"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &revocationList{
		log:    log.With("client", "RedisRevocationList"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (rl *revocationList) key(tokenID string) string {
	return rl.prefix + ":" + tokenID
}

func (rl *revocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if rl == nil || rl.rdb == nil {
		return fmt.Errorf("revocation list not initialized")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return fmt.Errorf("token id required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return rl.rdb.Set(ctx, rl.key(tokenID), "1", ttl).Err()
}

func (rl *revocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("revocation list not initialized")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return false, nil
	}
	n, err := rl.rdb.Exists(ctx, rl.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (rl *revocationList) Close() error {
	if rl == nil || rl.rdb == nil {
		return nil
	}
	return rl.rdb.Close()
}
