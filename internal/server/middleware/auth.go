package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware checks the X-Api-Key header against the configured key.
// When no key is configured, the API is open; this is a single-user local
// session, not a multi-tenant deployment.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		app := c.(*AppContext).App
		if app.APIKey == "" {
			return next(c)
		}

		provided := c.Request().Header.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(app.APIKey)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"message": "Unauthorized",
			})
		}
		return next(c)
	}
}
