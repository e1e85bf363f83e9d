// infrastructure/auth_middleware.go
package infrastructure

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

type identityKey struct{}

// ginIdentityKey is the gin.Context key; the request context carries the
// same value for code that only sees context.Context.
const ginIdentityKey = "identity"

// AuthMiddleware gates a route group on a bearer token. A missing or
// non-bearer header is 401, a token the verifier rejects is 403.
func AuthMiddleware(verifier domain.IdentityVerifier, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided."})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("uri", c.Request.URL.Path).Warn("token verification failed")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized: Invalid token."})
			return
		}

		c.Set(ginIdentityKey, identity)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the caller attached by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}

// MustIdentity is for handlers mounted behind AuthMiddleware.
func MustIdentity(c *gin.Context) *domain.Identity {
	return c.MustGet(ginIdentityKey).(*domain.Identity)
}
