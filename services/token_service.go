package services

import (
	"errors"
	"fmt"
	"time"

	"usuarios-api/config"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken covers every rejected token: malformed, bad signature,
// wrong algorithm or expired.
var ErrInvalidToken = errors.New("invalid token")

var errSecretNotConfigured = errors.New("token secret is not configured")

// TokenClaims is the payload of an issued token.
type TokenClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(userID uint, email string) (string, time.Time, error)
	Verify(tokenString string) (*TokenClaims, error)
}

type tokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{
		secret:     cfg.Secret,
		expiration: cfg.Expiration,
		now:        time.Now,
	}
}

func (s *tokenService) Issue(userID uint, email string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errSecretNotConfigured
	}

	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify returns ErrInvalidToken (possibly wrapped) for any token the caller
// got wrong. Any other error means the verifier itself is broken.
func (s *tokenService) Verify(tokenString string) (*TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, errSecretNotConfigured
	}
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
