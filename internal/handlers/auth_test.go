package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avilaj/tablero-api/internal/config"
	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/oauth"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/avilaj/tablero-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authTestDeps struct {
	userService  *testutil.MockUserService
	tokenService *testutil.MockTokenService
	jwtService   *testutil.MockJWTService
	handler      *AuthHandler
	cfg          *config.Config
}

// Handler is built by hand so no real providers get registered and the
// state cleanup goroutine never starts.
func setupAuthTest(t *testing.T) *authTestDeps {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)
	cfg := &config.Config{
		FrontendCallbackURL: "http://localhost:3000/auth/callback",
	}
	handler := &AuthHandler{
		cfg:          cfg,
		providers:    make(map[string]oauth.Provider),
		userService:  mockUserService,
		tokenService: mockTokenService,
		jwtService:   mockJWTService,
	}
	return &authTestDeps{
		userService:  mockUserService,
		tokenService: mockTokenService,
		jwtService:   mockJWTService,
		handler:      handler,
		cfg:          cfg,
	}
}

func TestAuthHandler_GetConsentURL_Success(t *testing.T) {
	deps := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	mockProvider.On("GetConsentURL", mock.Anything).Return("https://github.com/login/oauth/authorize?client_id=abc")
	deps.handler.providers["github"] = mockProvider

	app := drift.New()
	app.Get("/auth/:provider", deps.handler.GetConsentURL)

	req := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ConsentURLResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/login/oauth/authorize?client_id=abc", response.URL)

	mockProvider.AssertExpectations(t)
}

func TestAuthHandler_GetConsentURL_UnsupportedProvider(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Get("/auth/:provider", deps.handler.GetConsentURL)

	req := httptest.NewRequest(http.MethodGet, "/auth/bitbucket", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported provider: bitbucket")
}

func TestAuthHandler_Callback_Success(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	userInfo := &oauth.UserInfo{
		Email:    "test@example.com",
		Name:     "Test User",
		ID:       "12345",
		Provider: "github",
	}
	user := &models.User{ID: userID, Email: "test@example.com", Name: "Test User"}

	mockProvider := new(testutil.MockOAuthProvider)
	mockProvider.On("ExchangeCode", mock.Anything, "provider-code").Return(userInfo, nil)
	deps.handler.providers["github"] = mockProvider

	deps.userService.On("FindOrCreateFromOAuth", mock.Anything, userInfo).Return(user, nil)

	deps.handler.states.Store("valid-state", stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	app := drift.New()
	app.Get("/auth/:provider/callback", deps.handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=valid-state&code=provider-code", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), deps.cfg.FrontendCallbackURL)
	assert.Contains(t, rec.Body.String(), "?code=")

	// The state is single-use.
	_, ok := deps.handler.states.Load("valid-state")
	assert.False(t, ok)

	mockProvider.AssertExpectations(t)
	deps.userService.AssertExpectations(t)
}

func TestAuthHandler_Callback_InvalidState(t *testing.T) {
	deps := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	deps.handler.providers["github"] = mockProvider

	app := drift.New()
	app.Get("/auth/:provider/callback", deps.handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=unknown&code=provider-code", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired state")
}

func TestAuthHandler_Callback_MissingState(t *testing.T) {
	deps := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	deps.handler.providers["github"] = mockProvider

	app := drift.New()
	app.Get("/auth/:provider/callback", deps.handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=provider-code", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing state parameter")
}

func TestAuthHandler_Callback_MissingCode(t *testing.T) {
	deps := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	deps.handler.providers["github"] = mockProvider

	deps.handler.states.Store("valid-state", stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	app := drift.New()
	app.Get("/auth/:provider/callback", deps.handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=valid-state", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization code")
}

func TestAuthHandler_Callback_ExchangeFails(t *testing.T) {
	deps := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	mockProvider.On("ExchangeCode", mock.Anything, "bad-code").Return(nil, assert.AnError)
	deps.handler.providers["github"] = mockProvider

	deps.handler.states.Store("valid-state", stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	app := drift.New()
	app.Get("/auth/:provider/callback", deps.handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=valid-state&code=bad-code", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to exchange code")

	mockProvider.AssertExpectations(t)
}

func TestAuthHandler_ExchangeCode_Success(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com", Name: "Test User"}
	tokenPair := &services.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
	}

	deps.handler.authCodes.Store("valid-code", authCodeData{
		userID:    userID,
		expiresAt: time.Now().Add(30 * time.Second),
	})

	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.jwtService.On("GenerateTokenPair", userID, "test@example.com").Return(tokenPair, nil)
	deps.jwtService.On("RefreshExpiry").Return(24 * time.Hour)
	deps.tokenService.On("StoreRefreshToken", mock.Anything, userID, services.HashToken("refresh-token"), mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", deps.handler.ExchangeCode)

	body := dto.ExchangeCodeRequest{Code: "valid-code"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "access-token", response.AccessToken)
	assert.Equal(t, "refresh-token", response.RefreshToken)
	assert.Equal(t, int64(900), response.ExpiresIn)

	deps.userService.AssertExpectations(t)
	deps.jwtService.AssertExpectations(t)
	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_ExchangeCode_SingleUse(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com"}
	tokenPair := &services.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}

	deps.handler.authCodes.Store("one-shot", authCodeData{
		userID:    userID,
		expiresAt: time.Now().Add(30 * time.Second),
	})

	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.jwtService.On("GenerateTokenPair", userID, "test@example.com").Return(tokenPair, nil)
	deps.jwtService.On("RefreshExpiry").Return(24 * time.Hour)
	deps.tokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", deps.handler.ExchangeCode)

	jsonBody, _ := json.Marshal(dto.ExchangeCodeRequest{Code: "one-shot"})

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired code")
}

func TestAuthHandler_ExchangeCode_InvalidCode(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", deps.handler.ExchangeCode)

	jsonBody, _ := json.Marshal(dto.ExchangeCodeRequest{Code: "unknown-code"})

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired code")
}

func TestAuthHandler_ExchangeCode_ExpiredCode(t *testing.T) {
	deps := setupAuthTest(t)

	deps.handler.authCodes.Store("stale-code", authCodeData{
		userID:    uuid.New(),
		expiresAt: time.Now().Add(-1 * time.Second),
	})

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", deps.handler.ExchangeCode)

	jsonBody, _ := json.Marshal(dto.ExchangeCodeRequest{Code: "stale-code"})

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "code expired")
}

func TestAuthHandler_ExchangeCode_MissingCode(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", deps.handler.ExchangeCode)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "code is required")
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, Email: "test@example.com"}
	oldHash := services.HashToken("old-refresh-token")
	newPair := &services.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresIn:    900,
	}

	deps.jwtService.On("ValidateRefreshToken", "old-refresh-token").Return(userID, nil)
	deps.tokenService.On("ValidateRefreshToken", mock.Anything, oldHash).Return(userID, nil)
	deps.userService.On("GetByID", mock.Anything, userID).Return(user, nil)
	deps.tokenService.On("RevokeRefreshToken", mock.Anything, oldHash).Return(nil)
	deps.jwtService.On("GenerateTokenPair", userID, "test@example.com").Return(newPair, nil)
	deps.jwtService.On("RefreshExpiry").Return(24 * time.Hour)
	deps.tokenService.On("StoreRefreshToken", mock.Anything, userID, services.HashToken("new-refresh-token"), mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", deps.handler.RefreshToken)

	jsonBody, _ := json.Marshal(dto.RefreshTokenRequest{RefreshToken: "old-refresh-token"})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)

	deps.jwtService.AssertExpectations(t)
	deps.tokenService.AssertExpectations(t)
	deps.userService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	deps := setupAuthTest(t)

	deps.jwtService.On("ValidateRefreshToken", "garbage").Return(uuid.Nil, assert.AnError)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", deps.handler.RefreshToken)

	jsonBody, _ := json.Marshal(dto.RefreshTokenRequest{RefreshToken: "garbage"})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestAuthHandler_RefreshToken_Revoked(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	tokenHash := services.HashToken("revoked-token")

	deps.jwtService.On("ValidateRefreshToken", "revoked-token").Return(userID, nil)
	deps.tokenService.On("ValidateRefreshToken", mock.Anything, tokenHash).Return(uuid.Nil, assert.AnError)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", deps.handler.RefreshToken)

	jsonBody, _ := json.Marshal(dto.RefreshTokenRequest{RefreshToken: "revoked-token"})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh token not found or expired")
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", deps.handler.RefreshToken)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token is required")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	deps := setupAuthTest(t)

	tokenHash := services.HashToken("some-refresh-token")
	deps.tokenService.On("RevokeRefreshToken", mock.Anything, tokenHash).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", deps.handler.Logout)

	jsonBody, _ := json.Marshal(dto.RefreshTokenRequest{RefreshToken: "some-refresh-token"})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_Logout_EmptyToken(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", deps.handler.Logout)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	deps := setupAuthTest(t)

	userID := uuid.New()
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)

	deps.tokenService.On("RevokeAllUserTokens", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/auth/logout-all", deps.handler.LogoutAll)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	deps.tokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_NotAuthenticated(t *testing.T) {
	deps := setupAuthTest(t)

	app := drift.New()
	app.Post("/auth/logout-all", deps.handler.LogoutAll)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}
