package middleware

// identity.go holds the context key the auth middleware writes and the
// helpers that read it back.

import "github.com/labstack/echo/v4"

const usernameKey = "username"

// Username returns the authenticated caller, or "" when the request did
// not pass through JWTAuth.
func Username(c echo.Context) string {
	if v, ok := c.Get(usernameKey).(string); ok {
		return v
	}
	return ""
}

// userID is Username with "anon" standing in for unauthenticated callers.
func userID(c echo.Context) string {
	if u := Username(c); u != "" {
		return u
	}
	return "anon"
}
