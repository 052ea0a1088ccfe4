package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness and the running environment.
func Health(env string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "env": env})
	}
}
