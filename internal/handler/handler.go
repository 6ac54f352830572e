// Package handler implements the HTTP API: authentication, orders,
// drivers, user profiles and the live status websockets.  Handlers assume
// the router has already applied bearer-token middleware where required.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/notify"
	"github.com/kleanly/kleanly-api/internal/repository"
)

// dbTimeout bounds the store work done for a single request or tick.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

// storeError maps repository sentinels to responses.  notFoundMsg names
// the missing entity.
func storeError(c echo.Context, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errJSON(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrUsernameExists):
		return errJSON(c, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, repository.ErrConflict):
		return errJSON(c, http.StatusBadRequest, "Already exists")
	}
	c.Logger().Errorf("store: %v", err)
	return errJSON(c, http.StatusInternalServerError, "Internal server error")
}

func success(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func contactOf(u model.User) notify.Contact {
	to := notify.Contact{Email: u.Email}
	if u.PushToken != nil {
		to.PushToken = *u.PushToken
	}
	return to
}

// firstNonEmpty returns the first non-nil, non-empty string pointer.
func firstNonEmpty(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
