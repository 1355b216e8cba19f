package config

import (
	"errors"
	"time"
)

const defaultJWTExpiration = time.Hour

// JWTConfig holds the signing secret and token lifetime. It is read once at
// startup and handed to the token service.
type JWTConfig struct {
	Secret     []byte
	Expiration time.Duration
}

func (c JWTConfig) validate() error {
	if len(c.Secret) == 0 {
		return errors.New("JWT_SECRET environment variable is not set")
	}
	if c.Expiration <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	return nil
}
