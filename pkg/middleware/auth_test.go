package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lending-system/internal/authz"
	"lending-system/pkg/constants"
	"lending-system/pkg/service"
	"lending-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupEcho(t *testing.T) (*echo.Echo, service.JWTService) {
	t.Helper()
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	mw := NewAuthMiddleware(jwtSvc, zap.NewNop())

	e := echo.New()
	g := e.Group("/api", mw.Auth)
	g.GET("/me", func(c echo.Context) error {
		actor, err := utils.GetActorFromCtx(c.Request().Context())
		require.NoError(t, err)
		return c.JSON(http.StatusOK, actor)
	})
	g.GET("/reports", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw.AuthorizeAny(authz.ReportsView))

	return e, jwtSvc
}

func doRequest(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingHeader(t *testing.T) {
	e, _ := setupEcho(t)
	rec := doRequest(e, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	e, _ := setupEcho(t)
	rec := doRequest(e, "/api/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_PutsActorIntoContext(t *testing.T) {
	e, jwtSvc := setupEcho(t)
	token, _, err := jwtSvc.GenerateToken(7, constants.RoleTeacher)
	require.NoError(t, err)

	rec := doRequest(e, "/api/me", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"role_code":"TEACHER"}`, rec.Body.String())
}

func TestAuthorizeAny(t *testing.T) {
	e, jwtSvc := setupEcho(t)

	teacherToken, _, err := jwtSvc.GenerateToken(7, constants.RoleTeacher)
	require.NoError(t, err)
	adminToken, _, err := jwtSvc.GenerateToken(1, constants.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(e, "/api/reports", teacherToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(e, "/api/reports", adminToken).Code)
}
