package auth

import (
	"crypto/subtle"

	"github.com/pedalhub/pedalhub/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

type AdminAuthenticator struct {
	username     string
	password     string
	passwordHash string
}

func NewAdminAuthenticator(cfg config.AdminConfig) *AdminAuthenticator {
	return &AdminAuthenticator{
		username:     cfg.Username,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
	}
}

// Authenticate checks the admin credentials. A configured bcrypt hash takes
// precedence over the plain password.
func (a *AdminAuthenticator) Authenticate(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		return false
	}
	if a.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
