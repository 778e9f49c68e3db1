// Package cache regroupe les états courts partagés entre requêtes.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Blacklist révoque des JWT avant leur expiration (logout).
// Sans Redis, la liste reste en mémoire du processus.
type Blacklist struct {
	rdb *redis.Client
	log *zap.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewBlacklist(rdb *redis.Client, log *zap.Logger) *Blacklist {
	return &Blacklist{rdb: rdb, log: log, revoked: make(map[string]time.Time), now: time.Now}
}

func blacklistKey(tokenID string) string {
	return "blacklist:" + tokenID
}

// Revoke : ttl = durée de vie restante du token.
func (b *Blacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if b.rdb != nil {
		return b.rdb.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for id, exp := range b.revoked {
		if now.After(exp) {
			delete(b.revoked, id)
		}
	}
	b.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, tokenID string) bool {
	if b == nil || tokenID == "" {
		return false
	}
	if b.rdb != nil {
		n, err := b.rdb.Exists(ctx, blacklistKey(tokenID)).Result()
		if err != nil {
			b.log.Warn("⚠️ Erreur vérification blacklist", zap.Error(err))
			return false
		}
		return n > 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[tokenID]
	return ok && b.now().Before(exp)
}
