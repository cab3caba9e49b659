package controller

import (
	"io"
	"strconv"
	"strings"

	"safebites-be/internal/dto"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/serverutils"
	"safebites-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRestaurantController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	IngestionStatus(ctx *fiber.Ctx) error
}

type restaurantController struct {
	service service.IRestaurantService
}

func NewRestaurantController(service service.IRestaurantService) IRestaurantController {
	return &restaurantController{service: service}
}

func (c *restaurantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/restaurants")
	h.Post("/", c.Create)
	h.Get("/", c.GetAll)
	h.Get("/:id/ingestion", c.IngestionStatus)
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

// Create takes a multipart form with an optional menu_csv file.
func (c *restaurantController) Create(ctx *fiber.Ctx) error {
	name := ctx.FormValue("name")
	if name == "" {
		name = ctx.FormValue("restaurant_name")
	}

	req := dto.CreateRestaurantRequest{
		Name:     strings.TrimSpace(name),
		Location: ctx.FormValue("location"),
		Cuisine:  splitComma(ctx.FormValue("cuisine")),
	}
	if raw := strings.TrimSpace(ctx.FormValue("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperror.BadRequest("rating must be a number")
		}
		req.Rating = rating
	}
	if err := validate(&req); err != nil {
		return err
	}

	var menuCsv []byte
	if file, err := ctx.FormFile("menu_csv"); err == nil {
		f, err := file.Open()
		if err != nil {
			return apperror.BadRequest("could not open menu_csv")
		}
		defer f.Close()
		if menuCsv, err = io.ReadAll(f); err != nil {
			return apperror.BadRequest("could not read menu_csv")
		}
	}

	res, err := c.service.Create(ctx.UserContext(), &req, menuCsv)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create restaurant", res))
}

func (c *restaurantController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all restaurants", res))
}

func (c *restaurantController) Show(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show restaurant", res))
}

func (c *restaurantController) Update(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRestaurantRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update restaurant", res))
}

func (c *restaurantController) Delete(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete restaurant", nil))
}

func (c *restaurantController) IngestionStatus(ctx *fiber.Ctx) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}
	res, err := c.service.IngestionStatus(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get ingestion status", res))
}
