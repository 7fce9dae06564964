package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/mojocn/base64Captcha"
)

const captchaTTL = 10 * time.Minute

var (
	captchaStoreOnce sync.Once
	captchaStore     base64Captcha.Store
)

// captchaBackend prefers Redis so answers survive across instances, and falls back to process memory.
func captchaBackend() base64Captcha.Store {
	captchaStoreOnce.Do(func() {
		if GetRedis() != nil {
			captchaStore = NewRedisCaptchaStore(captchaTTL)
			return
		}
		captchaStore = base64Captcha.NewMemoryStore(base64Captcha.GCLimitNumber, captchaTTL)
	})
	return captchaStore
}

// GenerateCaptcha creates a digit captcha and returns its id and a data URI of the image.
func GenerateCaptcha() (string, string, error) {
	driver := base64Captcha.NewDriverDigit(40, 120, 5, 0.7, 80)
	c := base64Captcha.NewCaptcha(driver, captchaBackend())
	id, b64, _, err := c.Generate()
	return id, b64, err
}

// VerifyCaptcha checks the answer and consumes the captcha either way.
func VerifyCaptcha(id, answer string) bool {
	id, answer = strings.TrimSpace(id), strings.TrimSpace(answer)
	if id == "" || answer == "" {
		return false
	}
	return captchaBackend().Verify(id, answer, true)
}
