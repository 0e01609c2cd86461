package app

import (
	"fmt"

	sessionRepository "github.com/openride/openride/internal/session/repository"
	sessionService "github.com/openride/openride/internal/session/service"
	sessionUsecase "github.com/openride/openride/internal/session/usecase"
)

// TokenService returns the session token signing service.
// Fails when no signing key is configured: issuing unverifiable tokens is
// worse than refusing to start.
func (c *Container) TokenService() (sessionService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		if c.config.SessionSigningKey == "" {
			err = fmt.Errorf("SESSION_SIGNING_KEY is not configured")
			c.initErrors["tokenService"] = err
			return
		}
		c.tokenService = sessionService.NewTokenService(
			c.config.SessionSigningKey,
			c.config.SessionTokenExpiration,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// RevokedTokenRepository returns the revoked token repository based on the
// database driver.
func (c *Container) RevokedTokenRepository() (sessionUsecase.RevokedTokenRepository, error) {
	var err error
	c.revokedTokenRepoInit.Do(func() {
		c.revokedTokenRepo, err = c.initRevokedTokenRepository()
		if err != nil {
			c.initErrors["revokedTokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revokedTokenRepo"]; exists {
		return nil, storedErr
	}
	return c.revokedTokenRepo, nil
}

// SessionUseCase returns the session use case.
func (c *Container) SessionUseCase() (sessionUsecase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// initRevokedTokenRepository creates the revoked token repository based on the
// database driver.
func (c *Container) initRevokedTokenRepository() (sessionUsecase.RevokedTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for revoked token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sessionRepository.NewPostgreSQLRevokedTokenRepository(db), nil
	case "mysql":
		return sessionRepository.NewMySQLRevokedTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (sessionUsecase.SessionUseCase, error) {
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for session use case: %w", err)
	}

	revokedTokenRepo, err := c.RevokedTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get revoked token repository for session use case: %w", err)
	}

	useCase := sessionUsecase.NewSessionUseCase(tokenService, revokedTokenRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return sessionUsecase.NewSessionUseCaseWithMetrics(useCase, businessMetrics), nil
	}

	return useCase, nil
}
