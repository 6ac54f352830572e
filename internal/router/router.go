package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/handler"
)

// RegisterRoutes registers the unauthenticated liveness and demo routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/status", handler.Status)
	e.GET("/error", handler.Error)
}

// RegisterAuth registers registration and login, which are exempt from
// token checks, plus /me which reports the caller's identity.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, protect ...echo.MiddlewareFunc) {
	e.POST("/register", a.Register)
	e.POST("/token", a.Login)
	e.GET("/me", a.Me, protect...)
}

// RegisterOrders registers the order endpoints.  Every route requires a
// valid bearer token via protect.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, protect ...echo.MiddlewareFunc) {
	e.POST("/orders/", o.CreateOrder, protect...)
	e.POST("/orders", o.CreateOrder, protect...)
	e.GET("/orders/user/:user_id", o.ListUserOrders, protect...)
	e.GET("/orders/:order_id", o.GetOrder, protect...)
	e.PATCH("/orders/:order_id/status", o.UpdateStatus, protect...)
	e.POST("/orders/:order_id/cancel", o.CancelOrder, protect...)
}

// RegisterDrivers registers the driver endpoints behind protect.
func RegisterDrivers(e *echo.Echo, d *handler.DriverHandler, protect ...echo.MiddlewareFunc) {
	e.POST("/drivers/", d.CreateDriver, protect...)
	e.POST("/drivers", d.CreateDriver, protect...)
	e.POST("/drivers/assign", d.Assign, protect...)
	e.GET("/drivers/:driver_id", d.GetDriver, protect...)
	e.PATCH("/drivers/:driver_id/status", d.UpdateStatus, protect...)
	e.POST("/drivers/:driver_id/location", d.UpdateLocation, protect...)
}

// RegisterUsers registers the profile endpoints behind protect.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, protect ...echo.MiddlewareFunc) {
	e.GET("/users/:username", u.GetProfile, protect...)
	e.PATCH("/users/:username", u.UpdateProfile, protect...)
}

// RegisterLive registers the live status websockets.  guard is either a
// pass-through or a bearer check, depending on configuration.
func RegisterLive(e *echo.Echo, l *handler.LiveHandler, guard echo.MiddlewareFunc) {
	e.GET("/ws/orders/:order_id", l.OrderStatus, guard)
	e.GET("/ws/drivers/:driver_id/location", l.DriverLocation, guard)
}
