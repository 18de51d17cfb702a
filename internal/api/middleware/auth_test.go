package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/printshop/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService("middleware-test-secret", 15*time.Minute, 24*time.Hour)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := AuthMiddleware(newTestJWT())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	jwtService := newTestJWT()
	token, _, err := jwtService.GenerateAccessToken("user-1", "c@example.com", auth.RoleCustomer)
	require.NoError(t, err)

	var gotUserID string
	handler := AuthMiddleware(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	jwtService := newTestJWT()
	token, _, err := jwtService.GenerateAccessToken("user-1", "c@example.com", auth.RoleCustomer)
	require.NoError(t, err)

	handler := AuthMiddleware(jwtService)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_QueryTokenOnlyForWebsocketUpgrade(t *testing.T) {
	jwtService := newTestJWT()
	token, _, err := jwtService.GenerateAccessToken("user-1", "c@example.com", auth.RoleCustomer)
	require.NoError(t, err)

	handler := AuthMiddleware(jwtService)(okHandler())

	// Plain request: query token is ignored
	req := httptest.NewRequest(http.MethodGet, "/chat/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Upgrade request: query token accepted
	req = httptest.NewRequest(http.MethodGet, "/chat/ws?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := AuthMiddleware(newTestJWT())(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := newTestJWT()
	customerToken, _, err := jwtService.GenerateAccessToken("cust-1", "c@example.com", auth.RoleCustomer)
	require.NoError(t, err)
	ownerToken, _, err := jwtService.GenerateAccessToken("owner-1", "o@example.com", auth.RoleOwner)
	require.NoError(t, err)

	handler := AuthMiddleware(jwtService)(RequireRole(auth.RoleOwner)(okHandler()))

	req := httptest.NewRequest(http.MethodPatch, "/orders/o-1/status", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/orders/o-1/status", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	handler := RequireRole(auth.RoleOwner)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
