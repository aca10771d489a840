package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardwarestore/internal/caching"
	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/logger"
	"hardwarestore/testhelpers"
)

func newAuth(t *testing.T) services.AuthService {
	db := testhelpers.SetupTestDB(t)
	return services.NewAuthService(db.Store, caching.NewMemoryCacheService(), services.AuthConfig{
		Secret: "middleware-secret",
		TTL:    time.Hour,
	}, logger.Nop())
}

func whoAmI(c echo.Context) error {
	userID, _ := common.GetUserIDFromContext(c.Request().Context())
	role, _ := common.GetRoleFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "role": role})
}

func TestJWTMiddlewareAcceptsIssuedToken(t *testing.T) {
	auth := newAuth(t)
	login, err := auth.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = JWTMiddleware(auth, logger.Nop())(whoAmI)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	claims, ok := ClaimsFromContext(c)
	require.True(t, ok)
	assert.Equal(t, login.User.ID, claims.UserID)
}

func TestJWTMiddlewareRejects(t *testing.T) {
	auth := newAuth(t)
	login, err := auth.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	claims, err := auth.ValidateToken(context.Background(), login.Token)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(context.Background(), claims))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"revoked token", "Bearer " + login.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := JWTMiddleware(auth, logger.Nop())(whoAmI)(c)
			assert.True(t, errors.Is(err, common.ErrUnauthorized), "got %v", err)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
	}{
		{"admin allowed", common.WithUser(context.Background(), 1, "admin", "admin"), nil},
		{"staff forbidden", common.WithUser(context.Background(), 2, "clerk", "staff"), common.ErrForbidden},
		{"anonymous", context.Background(), common.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/api/staff/1", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(models.RoleAdmin)(func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			})(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Equal(t, http.StatusNoContent, rec.Code)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	e := echo.New()
	handler := RequestID(logger.Nop())(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestAPIVersionHeader(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	err := APIVersion("2.1.0")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(
		e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", rec.Header().Get("X-API-Version"))
}
