// Package middleware provides the auth gate, response cache and rate
// limiter applied around the note handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartnotes/api/internal/utils"
)

// JWTAuth returns an Echo middleware that verifies a Bearer access token and
// stores the resolved user id in the request context under "user_id".
// Requests with a missing, malformed or unverifiable token are rejected with
// 401 before any note operation runs. There is no server-side session behind
// the token; logout is client-side discard.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, no token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized, token failed"})
			}
			c.Set("user_id", uid)
			return next(c)
		}
	}
}
