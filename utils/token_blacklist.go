package utils

import (
	"context"
	"sync"
	"time"
)

const revokedKeyPrefix = "admin:session:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeSession invalidates a session token until its natural expiry.
func RevokeSession(token string, expiresAt time.Time) {
	ttl := expiresAt.Sub(nowFunc())
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err(); err == nil {
			return
		}
	}
	revokedMu.Lock()
	revoked[token] = expiresAt
	revokedMu.Unlock()
}

// IsSessionRevoked reports whether a token was revoked by logout.
func IsSessionRevoked(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, revokedKeyPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := nowFunc()
	for t, exp := range revoked {
		if now.After(exp) {
			delete(revoked, t)
		}
	}
	_, ok := revoked[token]
	return ok
}
