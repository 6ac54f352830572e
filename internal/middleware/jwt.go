package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the token's subject in the context under "username".  Any
// missing or invalid token ends the request with 401.
func JWTAuth(tokens *utils.TokenIssuer) echo.MiddlewareFunc {
	return bearer(tokens, false)
}

// OptionalJWTAuth behaves like JWTAuth when required is true and is a
// pass-through otherwise.  Besides the Authorization header it accepts a
// `token` query parameter, since browsers cannot set headers on websocket
// upgrades.
func OptionalJWTAuth(tokens *utils.TokenIssuer, required bool) echo.MiddlewareFunc {
	if !required {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return bearer(tokens, true)
}

func bearer(tokens *utils.TokenIssuer, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c, allowQuery)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
			}
			username, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Could not validate credentials"})
			}
			c.Set(usernameKey, username)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	// scheme is case-insensitive
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		raw := strings.TrimSpace(auth[7:])
		return raw, raw != ""
	}
	if allowQuery {
		if raw := c.QueryParam("token"); raw != "" {
			return raw, true
		}
	}
	return "", false
}
