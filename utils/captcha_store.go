package utils

import (
	"context"
	"time"

	"github.com/mojocn/base64Captcha"
)

const captchaKeyPrefix = "captcha:"

// redisCaptchaStore implements base64Captcha.Store backed by Redis.
type redisCaptchaStore struct {
	ttl time.Duration
}

func NewRedisCaptchaStore(ttl time.Duration) base64Captcha.Store {
	if ttl <= 0 {
		ttl = captchaTTL
	}
	return &redisCaptchaStore{ttl: ttl}
}

func (s *redisCaptchaStore) Set(id string, value string) error {
	rc := GetRedis()
	if rc == nil {
		return errRedisUnavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.Set(ctx, captchaKeyPrefix+id, value, s.ttl).Err()
}

// Get retrieves the value and optionally clears it.
func (s *redisCaptchaStore) Get(id string, clear bool) string {
	rc := GetRedis()
	if rc == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := captchaKeyPrefix + id
	var (
		v   string
		err error
	)
	if clear {
		// GETDEL needs Redis >= 6.2
		v, err = rc.GetDel(ctx, key).Result()
	} else {
		v, err = rc.Get(ctx, key).Result()
	}
	if err != nil {
		return ""
	}
	return v
}

func (s *redisCaptchaStore) Verify(id, answer string, clear bool) bool {
	v := s.Get(id, clear)
	return v != "" && v == answer
}
