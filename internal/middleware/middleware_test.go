package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
	"github.com/suteetoe/krist-shop/pkg/response"
)

func testTokens() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		Secret:     "middleware-secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		ResetTTL:   time.Minute,
	})
}

func newServer(tokens *jwtutil.JWTUtil) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler
	e.Use(RequestIDMiddleware, MetricsMiddleware)

	auth := AuthMiddleware(tokens)
	e.GET("/me", func(c echo.Context) error {
		id, _ := CurrentUserID(c)
		return response.OK(c, http.StatusOK, "ok", map[string]string{"id": id, "role": string(CurrentRole(c))})
	}, auth)
	e.GET("/admin", func(c echo.Context) error {
		return response.Message(c, "ok")
	}, auth, RequireRoles(model.RoleAdmin))
	e.GET("/users/:id", func(c echo.Context) error {
		if err := SelfOrAdmin(c, c.Param("id")); err != nil {
			return err
		}
		return response.Message(c, "ok")
	}, auth)
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	e := newServer(testTokens())

	rec := do(e, "/boom", "")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec).Message)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := testTokens()
	e := newServer(tokens)

	rec := do(e, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Unauthorized", env.Message)

	pair, err := tokens.GenerateTokenPair("user-1", "customer", false)
	require.NoError(t, err)

	rec = do(e, "/me", pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens cannot authenticate requests")

	rec = do(e, "/me", pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "user-1", data["id"])
	assert.Equal(t, "customer", data["role"])

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token "+pair.AccessToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	tokens := testTokens()
	e := newServer(tokens)
	customer, err := tokens.GenerateTokenPair("user-1", "customer", false)
	require.NoError(t, err)
	admin, err := tokens.GenerateTokenPair("admin-1", "admin", false)
	require.NoError(t, err)

	rec := do(e, "/admin", customer.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusOK, do(e, "/admin", admin.AccessToken).Code)

	assert.Equal(t, http.StatusOK, do(e, "/users/user-1", customer.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, do(e, "/users/user-2", customer.AccessToken).Code)
	assert.Equal(t, http.StatusOK, do(e, "/users/user-2", admin.AccessToken).Code)
}

func TestSelfOrAdminWithoutCaller(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.True(t, apperror.Is(SelfOrAdmin(c, "x"), apperror.KindUnauthorized))
	assert.Empty(t, CurrentRole(c))
}
