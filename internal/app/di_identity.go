package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/openride/openride/internal/identity/domain"
	identityHTTP "github.com/openride/openride/internal/identity/http"
	identityRepository "github.com/openride/openride/internal/identity/repository"
	identityService "github.com/openride/openride/internal/identity/service"
	identityUsecase "github.com/openride/openride/internal/identity/usecase"
)

// identityModule bundles the components of one identity domain. The same
// wiring produces the rider and captain modules; only the domain differs.
type identityModule struct {
	repo           identityUsecase.IdentityRepository
	useCase        identityUsecase.IdentityUseCase
	handler        *identityHTTP.Handler
	authMiddleware gin.HandlerFunc
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() identityService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = identityService.NewPasswordService()
	})
	return c.passwordService
}

// IdentityUseCase returns the identity use case for the given domain.
func (c *Container) IdentityUseCase(dom domain.Domain) (identityUsecase.IdentityUseCase, error) {
	module, err := c.identityModule(dom)
	if err != nil {
		return nil, err
	}
	return module.useCase, nil
}

// IdentityHandler returns the HTTP handler for the given domain.
func (c *Container) IdentityHandler(dom domain.Domain) (*identityHTTP.Handler, error) {
	module, err := c.identityModule(dom)
	if err != nil {
		return nil, err
	}
	return module.handler, nil
}

// identityModule returns the fully wired module for the given domain,
// building it on first access. A failed build is not cached so a later call
// can retry.
func (c *Container) identityModule(dom domain.Domain) (*identityModule, error) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()

	if module, exists := c.identityModules[dom]; exists {
		return module, nil
	}

	module, err := c.buildIdentityModule(dom)
	if err != nil {
		return nil, err
	}

	c.identityModules[dom] = module
	return module, nil
}

// buildIdentityModule wires the repository, use case, handler, and
// authentication middleware for one domain.
func (c *Container) buildIdentityModule(dom domain.Domain) (*identityModule, error) {
	repo, err := c.initIdentityRepository(dom)
	if err != nil {
		return nil, err
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for %s use case: %w", dom, err)
	}

	useCase := identityUsecase.NewIdentityUseCase(dom, txManager, repo, c.PasswordService())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for %s use case: %w", dom, err)
		}
		useCase = identityUsecase.NewIdentityUseCaseWithMetrics(useCase, dom, businessMetrics)
	}

	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for %s handler: %w", dom, err)
	}

	logger := c.Logger()
	handler := identityHTTP.NewHandler(dom, useCase, sessionUseCase, c.config, logger)
	authMiddleware := identityHTTP.AuthenticationMiddleware(
		dom,
		sessionUseCase,
		useCase,
		c.config.SessionCookieName,
		logger,
	)

	return &identityModule{
		repo:           repo,
		useCase:        useCase,
		handler:        handler,
		authMiddleware: authMiddleware,
	}, nil
}

// initIdentityRepository creates the identity repository for the given domain
// based on the database driver.
func (c *Container) initIdentityRepository(dom domain.Domain) (identityUsecase.IdentityRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for %s repository: %w", dom, err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLIdentityRepository(db, dom), nil
	case "mysql":
		return identityRepository.NewMySQLIdentityRepository(db, dom), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
