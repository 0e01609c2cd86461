package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openride/openride/internal/config"
	"github.com/openride/openride/internal/identity/domain"
	sessionDomain "github.com/openride/openride/internal/session/domain"
	appValidation "github.com/openride/openride/internal/validation"
)

// validationFailure builds the wrapped validation error a use case returns on
// invalid input.
func validationFailure(t *testing.T) error {
	t.Helper()
	return appValidation.WrapValidationError(validation.Errors{
		"Email": validation.NewError("validation_email_format", "must be a valid email address"),
	})
}

// mockIdentityUseCase is a mock implementation of usecase.IdentityUseCase for testing.
type mockIdentityUseCase struct {
	mock.Mock
}

func (m *mockIdentityUseCase) Register(ctx context.Context, input *domain.RegisterInput) (*domain.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityUseCase) Authenticate(ctx context.Context, input *domain.LoginInput) (*domain.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// mockSessionUseCase is a mock implementation of usecase.SessionUseCase for testing.
type mockSessionUseCase struct {
	mock.Mock
}

func (m *mockSessionUseCase) Issue(
	ctx context.Context,
	identityID uuid.UUID,
	dom domain.Domain,
) (string, *sessionDomain.Claims, error) {
	args := m.Called(ctx, identityID, dom)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*sessionDomain.Claims), args.Error(2)
}

func (m *mockSessionUseCase) Authenticate(ctx context.Context, plainToken string) (*sessionDomain.Claims, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Claims), args.Error(1)
}

func (m *mockSessionUseCase) Revoke(ctx context.Context, plainToken string) error {
	args := m.Called(ctx, plainToken)
	return args.Error(0)
}

func (m *mockSessionUseCase) CleanupExpired(ctx context.Context, dryRun bool) (int64, error) {
	args := m.Called(ctx, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		SessionCookieName:      "session_token",
		SessionTokenExpiration: 24 * time.Hour,
		SessionCookieSecure:    false,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testIdentity(dom domain.Domain) *domain.Identity {
	now := time.Now().UTC()
	return &domain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Domain:       dom,
		Email:        "john@example.com",
		FirstName:    "John",
		LastName:     "Doe",
		PasswordHash: "$argon2id$hashed",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testSessionClaims(identityID uuid.UUID, dom domain.Domain) *sessionDomain.Claims {
	now := time.Now().UTC()
	return &sessionDomain.Claims{
		IdentityID: identityID,
		Domain:     dom,
		TokenID:    uuid.Must(uuid.NewV7()),
		IssuedAt:   now,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session_token" {
			return cookie
		}
	}
	return nil
}

func TestHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := map[string]any{
		"fullName": map[string]string{
			"firstName": "John",
			"lastName":  "Doe",
		},
		"email":    "john@example.com",
		"password": "secret-password",
	}

	t.Run("Success", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		identity := testIdentity(domain.DomainUser)
		claims := testSessionClaims(identity.ID, domain.DomainUser)

		// The nested fullName object must bind into the flat domain input
		mockIdentities.On("Register", mock.Anything, mock.MatchedBy(func(input *domain.RegisterInput) bool {
			return input.FirstName == "John" &&
				input.LastName == "Doe" &&
				input.Email == "john@example.com" &&
				input.Password == "secret-password"
		})).
			Return(identity, nil).
			Once()
		mockSessions.On("Issue", mock.Anything, identity.ID, domain.DomainUser).
			Return("signed-token", claims, nil).
			Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/register", handler.RegisterHandler)

		payload, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "signed-token", response["token"])

		identityBody := response["identity"].(map[string]any)
		assert.Equal(t, "john@example.com", identityBody["email"])
		assert.NotContains(t, identityBody, "password_hash")

		fullName := identityBody["fullName"].(map[string]any)
		assert.Equal(t, "John", fullName["firstName"])
		assert.Equal(t, "Doe", fullName["lastName"])
		assert.NotContains(t, w.Body.String(), "$argon2id$")

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		mockIdentities.AssertExpectations(t)
		mockSessions.AssertExpectations(t)
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		validationErr := validationFailure(t)
		mockIdentities.On("Register", mock.Anything, mock.Anything).
			Return(nil, validationErr).
			Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/register", handler.RegisterHandler)

		payload, _ := json.Marshal(map[string]string{"email": "bad"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "validation_failed", response["error"])

		details := response["details"].(map[string]any)
		assert.Contains(t, details, "Email")
		mockSessions.AssertNotCalled(t, "Issue")
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		mockIdentities.On("Register", mock.Anything, mock.Anything).
			Return(nil, domain.ErrEmailAlreadyExists).
			Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/register", handler.RegisterHandler)

		payload, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockSessions.AssertNotCalled(t, "Issue")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/register", handler.RegisterHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewReader([]byte("{not-json")))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockIdentities.AssertNotCalled(t, "Register")
	})
}

func TestHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	body := map[string]string{
		"email":    "john@example.com",
		"password": "secret-password",
	}

	t.Run("Success", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		identity := testIdentity(domain.DomainCaptain)
		claims := testSessionClaims(identity.ID, domain.DomainCaptain)

		mockIdentities.On("Authenticate", mock.Anything, mock.MatchedBy(func(input *domain.LoginInput) bool {
			return input.Email == "john@example.com"
		})).
			Return(identity, nil).
			Once()
		mockSessions.On("Issue", mock.Anything, identity.ID, domain.DomainCaptain).
			Return("signed-token", claims, nil).
			Once()

		handler := NewHandler(domain.DomainCaptain, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/captains/login", handler.LoginHandler)

		payload, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/captains/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
	})

	t.Run("Error_InvalidCredentialsUniformBody", func(t *testing.T) {
		// Unknown email and wrong password must produce identical responses
		responses := make([]string, 0, 2)

		for range 2 {
			mockIdentities := &mockIdentityUseCase{}
			mockSessions := &mockSessionUseCase{}

			mockIdentities.On("Authenticate", mock.Anything, mock.Anything).
				Return(nil, domain.ErrInvalidCredentials).
				Once()

			handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
			router := gin.New()
			router.POST("/users/login", handler.LoginHandler)

			payload, _ := json.Marshal(body)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			responses = append(responses, w.Body.String())
		}

		assert.Equal(t, responses[0], responses[1])
	})
}

func TestHandler_Profile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		identity := testIdentity(domain.DomainUser)

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.GET("/users/profile", func(c *gin.Context) {
			// Simulate the authentication middleware
			ctx := WithIdentity(c.Request.Context(), identity)
			c.Request = c.Request.WithContext(ctx)
			handler.ProfileHandler(c)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, identity.Email, response["email"])
		assert.NotContains(t, w.Body.String(), "$argon2id$")
	})

	t.Run("Error_NoIdentityInContext", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.GET("/users/profile", handler.ProfileHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Logout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_ClearsCookie", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		mockSessions.On("Revoke", mock.Anything, "signed-token").Return(nil).Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/logout", handler.LogoutHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "signed-token"})
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		cookie := sessionCookie(t, w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
		mockSessions.AssertExpectations(t)
	})

	t.Run("Success_BearerToken", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		mockSessions.On("Revoke", mock.Anything, "signed-token").Return(nil).Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/logout", handler.LogoutHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		req.Header.Set("Authorization", "Bearer signed-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_NoToken", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/logout", handler.LogoutHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockSessions.AssertNotCalled(t, "Revoke")
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		mockIdentities := &mockIdentityUseCase{}
		mockSessions := &mockSessionUseCase{}

		mockSessions.On("Revoke", mock.Anything, "bad-token").
			Return(sessionDomain.ErrInvalidSessionToken).
			Once()

		handler := NewHandler(domain.DomainUser, mockIdentities, mockSessions, testConfig(), testLogger())
		router := gin.New()
		router.POST("/users/logout", handler.LogoutHandler)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "bad-token"})
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
