package controller

import (
	"safebites-be/internal/dto"
	"safebites-be/internal/pkg/serverutils"
	"safebites-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDishController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Filter(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type dishController struct {
	service   service.IDishService
	jwtSecret string
}

func NewDishController(service service.IDishService, jwtSecret string) IDishController {
	return &dishController{service: service, jwtSecret: jwtSecret}
}

func (c *dishController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dishes")
	viewer := serverutils.OptionalJwtMiddleware(c.jwtSecret)

	h.Post("/:restaurant_id", c.Create)
	h.Get("/", viewer, c.GetAll)
	h.Get("/filter", viewer, c.Filter)
	h.Get("/:id", viewer, c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *dishController) Create(ctx *fiber.Ctx) error {
	restaurantId, err := uuidParam(ctx, "restaurant_id")
	if err != nil {
		return err
	}
	var req dto.CreateDishRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), restaurantId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create dish", res))
}

// GetAll lists dishes, optionally scoped by ?restaurant= and ?tags=a,b.
func (c *dishController) GetAll(ctx *fiber.Ctx) error {
	restaurantId, err := optionalUUIDQuery(ctx, "restaurant")
	if err != nil {
		return err
	}
	query := dto.ListDishesQuery{
		RestaurantId: restaurantId,
		Tags:         splitComma(ctx.Query("tags")),
	}

	res, err := c.service.GetAll(ctx.UserContext(), query, viewerId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all dishes", res))
}

func (c *dishController) Filter(ctx *fiber.Ctx) error {
	var (
		query dto.FilterDishesQuery
		err   error
	)
	if query.RestaurantId, err = optionalUUIDQuery(ctx, "restaurant"); err != nil {
		return err
	}
	if query.MinPrice, err = optionalFloatQuery(ctx, "min_price"); err != nil {
		return err
	}
	if query.MaxPrice, err = optionalFloatQuery(ctx, "max_price"); err != nil {
		return err
	}
	if query.Available, err = optionalBoolQuery(ctx, "available"); err != nil {
		return err
	}
	query.ExcludeAllergens = splitComma(ctx.Query("exclude_allergens"))

	res, err := c.service.Filter(ctx.UserContext(), query, viewerId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success filter dishes", res))
}

func (c *dishController) Show(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), id, viewerId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show dish", res))
}

func (c *dishController) Update(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateDishRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update dish", res))
}

func (c *dishController) Delete(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete dish", nil))
}
