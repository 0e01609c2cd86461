package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openride/openride/internal/config"
	apperrors "github.com/openride/openride/internal/errors"
	"github.com/openride/openride/internal/httputil"
	"github.com/openride/openride/internal/identity/domain"
	"github.com/openride/openride/internal/identity/http/dto"
	identityUseCase "github.com/openride/openride/internal/identity/usecase"
	sessionUseCase "github.com/openride/openride/internal/session/usecase"
)

// Handler serves the identity endpoints for one domain. The same type is
// instantiated twice, once per domain, each wired with that domain's use case.
type Handler struct {
	domain     domain.Domain
	identities identityUseCase.IdentityUseCase
	sessions   sessionUseCase.SessionUseCase
	config     *config.Config
	logger     *slog.Logger
}

// NewHandler creates an identity handler bound to the given domain.
func NewHandler(
	dom domain.Domain,
	identities identityUseCase.IdentityUseCase,
	sessions sessionUseCase.SessionUseCase,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		domain:     dom,
		identities: identities,
		sessions:   sessions,
		config:     cfg,
		logger:     logger,
	}
}

// setSessionCookie writes the session token as an HttpOnly cookie. SameSite
// Lax keeps the cookie off cross-site POSTs while still following top-level
// navigations.
func (h *Handler) setSessionCookie(c *gin.Context, plainToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.config.SessionCookieName,
		plainToken,
		int(h.config.SessionTokenExpiration.Seconds()),
		"/",
		"",
		h.config.SessionCookieSecure,
		true,
	)
}

// clearSessionCookie expires the session cookie immediately.
func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.config.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.config.SessionCookieSecure,
		true,
	)
}

// RegisterHandler creates a new identity and opens a session for it.
// POST /{domain}/register - No authentication required.
// Returns 201 Created with the identity and session token; the token is also
// set as the session cookie.
func (h *Handler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	identity, err := h.identities.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	plainToken, claims, err := h.sessions.Issue(c.Request.Context(), identity.ID, h.domain)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.setSessionCookie(c, plainToken)

	h.logger.Info("identity registered",
		slog.String("identity_id", identity.ID.String()),
		slog.String("domain", string(h.domain)))

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token:     plainToken,
		ExpiresAt: claims.ExpiresAt,
		Identity:  dto.NewIdentityResponse(identity),
	})
}

// LoginHandler verifies credentials and opens a session.
// POST /{domain}/login - No authentication required.
// Returns 200 OK with the identity and session token. Unknown email and wrong
// password produce byte-identical 401 responses.
func (h *Handler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	identity, err := h.identities.Authenticate(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	plainToken, claims, err := h.sessions.Issue(c.Request.Context(), identity.ID, h.domain)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.setSessionCookie(c, plainToken)

	h.logger.Info("identity logged in",
		slog.String("identity_id", identity.ID.String()),
		slog.String("domain", string(h.domain)))

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token:     plainToken,
		ExpiresAt: claims.ExpiresAt,
		Identity:  dto.NewIdentityResponse(identity),
	})
}

// ProfileHandler returns the authenticated identity.
// GET /{domain}/profile - Requires authentication.
func (h *Handler) ProfileHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok {
		// Authentication middleware did not run
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewIdentityResponse(identity))
}

// LogoutHandler revokes the presented session token and clears the cookie.
// POST /{domain}/logout - Requires authentication. Only the presented token
// is revoked; the identity's other sessions stay valid.
func (h *Handler) LogoutHandler(c *gin.Context) {
	plainToken := extractSessionToken(c, h.config.SessionCookieName)
	if plainToken == "" {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), plainToken); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.clearSessionCookie(c)

	if claims, ok := GetClaims(c.Request.Context()); ok {
		h.logger.Info("identity logged out",
			slog.String("identity_id", claims.IdentityID.String()),
			slog.String("domain", string(h.domain)))
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}
