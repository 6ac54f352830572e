package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/repository"
	"github.com/kleanly/kleanly-api/internal/utils"
)

// UserHandler serves profile reads and partial updates.
type UserHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

func NewUserHandler(u *repository.UserRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: u, BcryptCost: bcryptCost}
}

// updateUserReq carries only the fields the client sent; empty strings
// are ignored like absent ones.
type updateUserReq struct {
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Email     *string `json:"email"`
	PushToken *string `json:"push_token"`
	ExpoToken *string `json:"expo_token"`
	IsAdmin   *bool   `json:"is_admin"`
	IsDriver  *bool   `json:"is_driver"`
}

// GetProfile handles GET /users/:username.
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile handles PATCH /users/:username.  A new password is hashed
// before it is stored.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	patch := model.UserPatch{
		Username:  firstNonEmpty(req.Username),
		Email:     firstNonEmpty(req.Email),
		PushToken: firstNonEmpty(req.PushToken, req.ExpoToken),
		IsAdmin:   req.IsAdmin,
		IsDriver:  req.IsDriver,
	}
	if pw := firstNonEmpty(req.Password); pw != nil {
		hash, err := utils.HashPassword(*pw, h.BcryptCost)
		if err != nil {
			c.Logger().Errorf("hash password: %v", err)
			return errJSON(c, http.StatusInternalServerError, "Internal server error")
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.Update(ctx, c.Param("username"), patch); err != nil {
		return storeError(c, err, "User not found")
	}
	return success(c)
}
