package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root is the welcome endpoint.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to the API"})
}

// Status is a liveness probe for load balancers and monitoring.
func Status(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Error always answers 400; clients use it to exercise their error path.
func Error(c echo.Context) error {
	return errJSON(c, http.StatusBadRequest, "Bad request")
}
