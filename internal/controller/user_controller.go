package controller

import (
	"safebites-be/internal/dto"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/serverutils"
	"safebites-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Signup(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	UpdateMe(ctx *fiber.Ctx) error
	DeleteMe(ctx *fiber.Ctx) error
	Lookup(ctx *fiber.Ctx) error
}

type userController struct {
	authService service.IAuthService
	userService service.IUserService
	jwtSecret   string
}

func NewUserController(authService service.IAuthService, userService service.IUserService, jwtSecret string) IUserController {
	return &userController{
		authService: authService,
		userService: userService,
		jwtSecret:   jwtSecret,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Post("/signup", c.Signup)
	h.Post("/login", c.Login)

	me := h.Group("/me", serverutils.JwtMiddleware(c.jwtSecret))
	me.Get("/", c.Me)
	me.Put("/", c.UpdateMe)
	me.Delete("/", c.DeleteMe)

	h.Get("/:id_or_username", c.Lookup)
}

func (c *userController) Signup(ctx *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.authService.Signup(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success sign up", res))
}

// Login reads credentials from the query string, falling back to a JSON body.
func (c *userController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.BadRequest("invalid query parameters")
	}
	if req.Username == "" && req.Password == "" && len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.BadRequest("invalid request body")
		}
	}
	if err := validate(&req); err != nil {
		return err
	}

	res, err := c.authService.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success login", res))
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	res, err := c.userService.GetProfile(ctx.UserContext(), viewerId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *userController) UpdateMe(ctx *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.userService.UpdateProfile(ctx.UserContext(), viewerId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update profile", res))
}

func (c *userController) DeleteMe(ctx *fiber.Ctx) error {
	if err := c.userService.DeleteAccount(ctx.UserContext(), viewerId(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete account", nil))
}

func (c *userController) Lookup(ctx *fiber.Ctx) error {
	res, err := c.userService.Lookup(ctx.UserContext(), ctx.Params("id_or_username"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get user", res))
}
