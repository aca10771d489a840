package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hardwarestore/internal/common"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/logger"
)

// ClaimsKey is where the validated token claims live on the echo context.
const ClaimsKey = "claims"

// JWTMiddleware authenticates bearer tokens through the auth service, so revoked
// tokens are refused too, and puts the caller's identity on the request context.
func JWTMiddleware(auth services.AuthService, log *logger.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return auth.ValidateToken(c.Request().Context(), token)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return
			}
			ctx := common.WithUser(c.Request().Context(), claims.UserID, claims.Username, claims.Role)
			ctx = log.WithUserID(ctx, claims.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if typed := common.AsError(err); typed != nil {
				return typed
			}
			return common.WrapError(common.CodeUnauthorized, err, http.StatusText(http.StatusUnauthorized))
		},
	})
}

// ClaimsFromContext returns the claims stored by JWTMiddleware.
func ClaimsFromContext(c echo.Context) (*services.TokenClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*services.TokenClaims)
	return claims, ok && claims != nil
}
