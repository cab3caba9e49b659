package controller

import (
	"safebites-be/internal/dto"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/serverutils"
	"safebites-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	jwtSecret string
}

func NewChatController(service service.IChatService, jwtSecret string) IChatController {
	return &chatController{service: service, jwtSecret: jwtSecret}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/restaurants")
	h.Post("/search", serverutils.OptionalJwtMiddleware(c.jwtSecret), c.Search)
	h.Get("/history/:user_id/:restaurant_id", serverutils.JwtMiddleware(c.jwtSecret), c.History)
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), viewerId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := uuidParam(ctx, "user_id")
	if err != nil {
		return err
	}
	if viewerId(ctx) != userId {
		return apperror.Forbidden("cannot read another user's history")
	}
	restaurantId, err := uuidParam(ctx, "restaurant_id")
	if err != nil {
		return err
	}

	res, err := c.service.History(ctx.UserContext(), userId, restaurantId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}
