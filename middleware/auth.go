package middleware

import (
	"errors"

	"usuarios-api/helper"
	"usuarios-api/logging"
	"usuarios-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenHeader carries the token issued at login.
const TokenHeader = "x-auth-token"

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxClaims = "claims"
)

var HTTPHelper = &helper.HTTPHelper{}

// AuthMiddleware rejects requests without a valid token and stores the
// verified claims on the context. It fails closed: a verifier error that is
// not about the token itself ends the request with 500.
func AuthMiddleware(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logging.FromContext(c.Request.Context()).With(zap.String("mw", "auth"))

		tokenString := c.GetHeader(TokenHeader)
		if tokenString == "" {
			HTTPHelper.SendUnauthorizedError(c, "Access denied. No access token provided.")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				l.Info("token rejected", zap.Error(err))
				HTTPHelper.SendUnauthorizedError(c, "Access denied. Token verification failed.")
				c.Abort()
				return
			}
			l.Error("token verification failed", zap.Error(err))
			HTTPHelper.SendInternalServerError(c)
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// CurrentClaims returns the claims stored by AuthMiddleware.
func CurrentClaims(c *gin.Context) (*services.TokenClaims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*services.TokenClaims)
	return claims, ok && claims != nil
}
