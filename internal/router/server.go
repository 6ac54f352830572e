package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/kleanly/kleanly-api/internal/config"
	"github.com/kleanly/kleanly-api/internal/handler"
	"github.com/kleanly/kleanly-api/internal/middleware"
	"github.com/kleanly/kleanly-api/internal/notify"
	"github.com/kleanly/kleanly-api/internal/repository"
	"github.com/kleanly/kleanly-api/internal/utils"
)

// Deps are the explicitly constructed collaborators the API runs on.
// Redis may be nil; rate limiting is then skipped.
type Deps struct {
	Config    config.Config
	RateLimit config.RateLimitConfig
	DB        *sql.DB
	Redis     *redis.Client
	Tokens    *utils.TokenIssuer
	Notify    *notify.Dispatcher
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Skipper: func(c echo.Context) bool { return d.Config.Env == "test" },
	}))

	users := repository.NewUserRepo(d.DB)
	orders := repository.NewOrderRepo(d.DB)
	drivers := repository.NewDriverRepo(d.DB)

	protect := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.Tokens),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
	}

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(users, d.Tokens, d.Config.BcryptCost), protect...)
	RegisterOrders(e, handler.NewOrderHandler(orders, drivers, users, d.Notify), protect...)
	RegisterDrivers(e, handler.NewDriverHandler(drivers, orders, d.Notify), protect...)
	RegisterUsers(e, handler.NewUserHandler(users, d.Config.BcryptCost), protect...)
	RegisterLive(e, handler.NewLiveHandler(orders, drivers),
		middleware.OptionalJWTAuth(d.Tokens, d.Config.WSRequireAuth))
	return e
}
