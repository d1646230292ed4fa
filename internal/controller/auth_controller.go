package controller

import (
	"time"

	"golden-notes-be/internal/config"
	"golden-notes-be/internal/dto"
	"golden-notes-be/internal/pkg/serverutils"
	"golden-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	SignUp(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
	authConfig  config.AuthConfig
}

func NewAuthController(authService service.IAuthService, authConfig config.AuthConfig) IAuthController {
	return &authController{
		authService: authService,
		authConfig:  authConfig,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("sign-up", c.SignUp)
	h.Post("login", c.Login)
	h.Post("logout", c.Logout)
}

func (c *authController) SignUp(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authService.Register(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sign up", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authService.Login(ctx.Context(), &req, ctx.IP(), ctx.Get("User-Agent"))
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	}

	// The browser session rides on this cookie; the token also comes back in
	// the body for non-browser clients.
	ctx.Cookie(&fiber.Cookie{
		Name:     c.authConfig.SessionCookieName,
		Value:    res.AccessToken,
		Expires:  time.Now().Add(c.authConfig.SessionTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return ctx.JSON(serverutils.SuccessResponse("Success login", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; sessions without "remember me" have no token to revoke.
	_ = ctx.BodyParser(&req)

	if err := c.authService.Logout(ctx.Context(), req.RefreshToken); err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.authConfig.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return ctx.JSON(serverutils.SuccessResponse[any]("Success logout", nil))
}
