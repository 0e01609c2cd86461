package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/openride/openride/internal/errors"
	"github.com/openride/openride/internal/httputil"
	"github.com/openride/openride/internal/identity/domain"
	identityUseCase "github.com/openride/openride/internal/identity/usecase"
	sessionUseCase "github.com/openride/openride/internal/session/usecase"
)

// extractSessionToken pulls the session token from the request: the session
// cookie first, then a Bearer Authorization header. Returns "" when neither
// carries a token.
func extractSessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	const bearerPrefix = "bearer "
	if len(authHeader) >= len(bearerPrefix) &&
		strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return authHeader[len(bearerPrefix):]
	}

	return ""
}

// AuthenticationMiddleware authenticates requests for one identity domain.
//
// The middleware:
// 1. Extracts the session token from the cookie or Authorization header
// 2. Verifies it via the session use case (signature, expiry, revocation)
// 3. Rejects tokens issued for the other identity domain
// 4. Resolves the identity from the credential store
// 5. Attaches the identity and claims to the request context
//
// Every failure mode is a uniform 401: a rider token presented on a captain
// route looks exactly like a forged token. Handlers downstream never re-parse
// the token; they read the context via GetIdentity and GetClaims.
func AuthenticationMiddleware(
	dom domain.Domain,
	sessions sessionUseCase.SessionUseCase,
	identities identityUseCase.IdentityUseCase,
	cookieName string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken := extractSessionToken(c, cookieName)
		if plainToken == "" {
			logger.Debug("authentication failed: no session token presented")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := sessions.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if claims.Domain != dom {
			logger.Debug("authentication failed: token domain mismatch",
				slog.String("token_domain", string(claims.Domain)),
				slog.String("route_domain", string(dom)))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		identity, err := identities.GetByID(c.Request.Context(), claims.IdentityID)
		if err != nil {
			// A valid token for a deleted identity is still a 401, not a 404
			if apperrors.Is(err, domain.ErrIdentityNotFound) {
				err = apperrors.ErrUnauthorized
			}
			logger.Debug("authentication failed: identity lookup",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		ctx = WithClaims(ctx, claims)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("identity_id", identity.ID.String()),
			slog.String("domain", string(dom)))

		c.Next()
	}
}
