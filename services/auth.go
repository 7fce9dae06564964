package services

import (
	"errors"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/utils"
)

var (
	ErrAuthNotConfigured  = errors.New("admin credentials are not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminAuth checks the single shared admin credential.
type AdminAuth struct {
	username string
	hash     string
}

// NewAdminAuth prefers ADMIN_PASSWORD_HASH; a plain ADMIN_PASSWORD is hashed once here.
func NewAdminAuth(cfg config.AppConfig) (*AdminAuth, error) {
	a := &AdminAuth{username: cfg.AdminUsername, hash: cfg.AdminPasswordHash}
	if a.hash == "" && cfg.AdminPassword != "" {
		h, err := utils.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		a.hash = h
	}
	return a, nil
}

// Configured reports whether both username and password are set.
func (a *AdminAuth) Configured() bool {
	return a.username != "" && a.hash != ""
}

// Verify checks a login attempt.
func (a *AdminAuth) Verify(username, password string) error {
	if !a.Configured() {
		return ErrAuthNotConfigured
	}
	userOK := utils.EqualConstantTime(username, a.username)
	// bcrypt runs even when the username is wrong
	passOK := utils.CheckPassword(a.hash, password)
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
