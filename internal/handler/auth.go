package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kleanly/kleanly-api/internal/middleware"
	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/repository"
	"github.com/kleanly/kleanly-api/internal/utils"
)

// AuthHandler bundles dependencies for registration and login.
type AuthHandler struct {
	Users      *repository.UserRepo
	Tokens     *utils.TokenIssuer
	BcryptCost int
}

func NewAuthHandler(u *repository.UserRepo, t *utils.TokenIssuer, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: t, BcryptCost: bcryptCost}
}

// ----- DTOs -----

type registerReq struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	PushToken *string `json:"push_token"`
	ExpoToken *string `json:"expo_token"` // name used by the mobile app
	IsAdmin   bool    `json:"is_admin"`
	IsDriver  bool    `json:"is_driver"`
}

type loginReq struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles POST /register.  A taken username yields 400.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := middleware.BindAndValidate(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username: failed required")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u := model.User{
		Username:  req.Username,
		Email:     strings.TrimSpace(req.Email),
		PushToken: firstNonEmpty(req.PushToken, req.ExpoToken),
		IsAdmin:   req.IsAdmin,
		IsDriver:  req.IsDriver,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.BcryptCost); err != nil {
		return storeError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"username": u.Username})
}

// Login handles POST /token.  Credentials arrive form encoded, as in the
// OAuth2 password flow.
func (h *AuthHandler) Login(c echo.Context) error {
	req := loginReq{Username: c.FormValue("username"), Password: c.FormValue("password")}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storeError(c, err, "")
	}
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return errJSON(c, http.StatusUnauthorized, "Incorrect username or password")
	}

	access, err := h.Tokens.Issue(u.Username)
	if err != nil {
		c.Logger().Errorf("issue token: %v", err)
		return errJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, tokenResp{AccessToken: access.Token, TokenType: "bearer"})
}

// Me returns the identity carried by the caller's token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"username": middleware.Username(c)})
}
