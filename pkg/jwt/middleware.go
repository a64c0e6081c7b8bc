package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// ContextKeyClaims is the gin context key holding *Claims.
const ContextKeyClaims = "jwt_claims"

// RequireToken rejects requests without a valid bearer token carrying scope.
func RequireToken(svc *TokenService, scope string, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.NewUnauthorizedError("Authorization header is required"))
			return
		}

		claims, err := svc.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("Token validation failed",
				logging.NewField("error", err),
				logging.NewField("ip", c.ClientIP()),
				logging.NewField("path", c.Request.URL.Path),
			)
			switch {
			case errors.Is(err, ErrExpiredToken):
				abort(c, apperrors.NewUnauthorizedError("Token has expired"))
			case errors.Is(err, ErrTokenTooLarge):
				abort(c, apperrors.NewAppError(apperrors.ErrorCodePayloadTooLarge, "Token size exceeds maximum allowed", http.StatusRequestEntityTooLarge))
			default:
				abort(c, apperrors.NewUnauthorizedError("Invalid token"))
			}
			return
		}

		if scope != "" && !claims.HasScope(scope) {
			logger.Warn("Token lacks scope",
				logging.NewField("subject", claims.Subject),
				logging.NewField("scope", scope),
			)
			abort(c, apperrors.NewForbiddenError("Insufficient permissions"))
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims returns the claims stored by RequireToken.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	// A JWT has exactly three segments.
	if token == "" || strings.Count(token, ".") != 2 {
		return "", false
	}
	return token, true
}

// abort answers directly; the guard runs outside httpservice.Wrap.
func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToErrorResponse())
}
