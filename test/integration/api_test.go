// Package integration provides end-to-end tests for the identity and session
// API. The full flow (register, login, profile, logout) runs against both
// PostgreSQL and MySQL; tests skip when the database is not available.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openride/openride/internal/app"
	"github.com/openride/openride/internal/config"
	"github.com/openride/openride/internal/identity/http/dto"
	"github.com/openride/openride/internal/testutil"
)

const sessionCookieName = "session_token"

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
}

// makeRequest performs an HTTP request and returns the response and body.
// The token, when set, is sent as a bearer Authorization header.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

// sessionCookie returns the session cookie set on the response, or nil.
func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		Environment:            "test",
		ServerHost:             "localhost",
		ServerPort:             8080,
		DBDriver:               dbDriver,
		DBConnectionString:     dsn,
		DBMaxOpenConnections:   10,
		DBMaxIdleConnections:   5,
		DBConnMaxLifetime:      time.Hour,
		LogLevel:               "error",
		SessionSigningKey:      "integration-test-signing-key",
		SessionTokenExpiration: time.Hour,
		SessionCookieName:      sessionCookieName,
	}

	container := app.NewContainer(cfg)

	httpServer, err := container.HTTPServer()
	require.NoError(t, err, "failed to initialize http server")

	server := httptest.NewServer(httpServer.GetHandler())

	testCtx := &integrationTestContext{
		container: container,
		db:        db,
		server:    server,
		dbDriver:  dbDriver,
	}

	t.Cleanup(func() {
		server.Close()
		if err := container.Shutdown(context.Background()); err != nil {
			t.Logf("container shutdown: %v", err)
		}
		testutil.TeardownDB(t, db)
	})

	return testCtx
}

func TestAPIWithPostgres(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	runAPITests(t, "postgres")
}

func TestAPIWithMySQL(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	runAPITests(t, "mysql")
}

func runAPITests(t *testing.T, dbDriver string) {
	ctx := setupIntegrationTest(t, dbDriver)

	var riderToken string
	var captainToken string

	t.Run("RegisterRider", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/users/register", dto.RegisterRequest{
			FullName: dto.FullName{FirstName: "Ayesha", LastName: "Khan"},
			Email:    "ayesha@example.com",
			Password: "super-secret-password",
		}, "")

		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		var authResp dto.AuthResponse
		require.NoError(t, json.Unmarshal(body, &authResp))
		assert.NotEmpty(t, authResp.Token)
		assert.Equal(t, "ayesha@example.com", authResp.Identity.Email)
		assert.Equal(t, dto.FullName{FirstName: "Ayesha", LastName: "Khan"}, authResp.Identity.FullName)
		assert.NotContains(t, string(body), "password_hash")

		cookie := sessionCookie(resp)
		require.NotNil(t, cookie, "expected session cookie on register")
		assert.Equal(t, authResp.Token, cookie.Value)
		assert.True(t, cookie.HttpOnly)

		riderToken = authResp.Token
	})

	t.Run("RegisterDuplicateEmail", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/users/register", dto.RegisterRequest{
			FullName: dto.FullName{FirstName: "Ayesha", LastName: "Khan"},
			Email:    "ayesha@example.com",
			Password: "another-password",
		}, "")

		assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))
	})

	t.Run("RegisterCaptainWithSameEmail", func(t *testing.T) {
		// The captain namespace is independent, so the rider's email is free here
		resp, body := ctx.makeRequest(t, http.MethodPost, "/captains/register", dto.RegisterRequest{
			FullName: dto.FullName{FirstName: "Ayesha", LastName: "Khan"},
			Email:    "ayesha@example.com",
			Password: "captain-password",
		}, "")

		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		var authResp dto.AuthResponse
		require.NoError(t, json.Unmarshal(body, &authResp))
		captainToken = authResp.Token
	})

	t.Run("ConcurrentRegistrationsSingleWinner", func(t *testing.T) {
		// The unique email index must let exactly one of N simultaneous
		// registrations through; the rest observe the duplicate conflict.
		const attempts = 8

		payload, err := json.Marshal(dto.RegisterRequest{
			FullName: dto.FullName{FirstName: "Bilal", LastName: "Ahmed"},
			Email:    "bilal@example.com",
			Password: "super-secret-password",
		})
		require.NoError(t, err)

		start := make(chan struct{})
		results := make(chan int, attempts)
		errs := make(chan error, attempts)

		var wg sync.WaitGroup
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start

				resp, err := http.Post(
					ctx.server.URL+"/users/register",
					"application/json",
					bytes.NewReader(payload),
				)
				if err != nil {
					errs <- err
					return
				}
				defer resp.Body.Close()
				results <- resp.StatusCode
			}()
		}

		close(start)
		wg.Wait()
		close(results)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		var created, conflicts int
		for status := range results {
			switch status {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			default:
				t.Errorf("unexpected status %d", status)
			}
		}

		assert.Equal(t, 1, created)
		assert.Equal(t, attempts-1, conflicts)
	})

	t.Run("RegisterValidationFailure", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/users/register", dto.RegisterRequest{
			FullName: dto.FullName{FirstName: "Jo"},
			Email:    "not-an-email",
			Password: "short",
		}, "")

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.Equal(t, "validation_failed", errResp["error"])
		assert.NotEmpty(t, errResp["details"])
	})

	t.Run("Login", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/users/login", dto.LoginRequest{
			Email:    "ayesha@example.com",
			Password: "super-secret-password",
		}, "")

		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.NotNil(t, sessionCookie(resp))
	})

	t.Run("LoginFailuresAreUniform", func(t *testing.T) {
		respWrongPassword, bodyWrongPassword := ctx.makeRequest(t, http.MethodPost, "/users/login", dto.LoginRequest{
			Email:    "ayesha@example.com",
			Password: "wrong-password",
		}, "")

		respUnknownEmail, bodyUnknownEmail := ctx.makeRequest(t, http.MethodPost, "/users/login", dto.LoginRequest{
			Email:    "nobody@example.com",
			Password: "wrong-password",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, respWrongPassword.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, respUnknownEmail.StatusCode)

		// Identical bodies keep the endpoint useless for account enumeration
		assert.Equal(t, string(bodyWrongPassword), string(bodyUnknownEmail))
	})

	t.Run("Profile", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/users/profile", nil, riderToken)

		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var identityResp dto.IdentityResponse
		require.NoError(t, json.Unmarshal(body, &identityResp))
		assert.Equal(t, "ayesha@example.com", identityResp.Email)
	})

	t.Run("ProfileRejectsCrossDomainToken", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/captains/profile", nil, riderToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/users/profile", nil, captainToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ProfileWithoutToken", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/users/profile", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("LogoutRevokesToken", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/users/logout", nil, riderToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		cookie := sessionCookie(resp)
		require.NotNil(t, cookie, "expected cleared session cookie on logout")
		assert.Empty(t, cookie.Value)

		// The revoked token must no longer authenticate
		resp, _ = ctx.makeRequest(t, http.MethodGet, "/users/profile", nil, riderToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("CaptainProfileStillWorks", func(t *testing.T) {
		// Revoking the rider session must not touch the captain session
		resp, body := ctx.makeRequest(t, http.MethodGet, "/captains/profile", nil, captainToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	})
}
