package controller

import (
	"strconv"
	"strings"

	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func uuidParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid %s", name)
	}
	return id, nil
}

func optionalUUIDQuery(ctx *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.BadRequest("invalid %s", name)
	}
	return &id, nil
}

func optionalFloatQuery(ctx *fiber.Ctx, name string) (*float64, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.BadRequest("%s must be a number", name)
	}
	return &v, nil
}

func optionalBoolQuery(ctx *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(ctx.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.BadRequest("%s must be true or false", name)
	}
	return &v, nil
}

// splitComma splits "a, b,,c" into [a b c].
func splitComma(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	return validate(req)
}

func validate(req interface{}) error {
	if err := serverutils.ValidateRequest(req); err != nil {
		return apperror.BadRequest("%s", err.Error())
	}
	return nil
}

// viewerId is uuid.Nil for anonymous callers.
func viewerId(ctx *fiber.Ctx) uuid.UUID {
	id, _ := serverutils.CurrentUserID(ctx)
	return id
}
