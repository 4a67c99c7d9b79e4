package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-service/internal/api/dto"
	"github.com/spec-kit/employee-service/internal/pagination"
	apperrors "github.com/spec-kit/employee-service/pkg/util/errorutil"
)

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return id, nil
}

// parseOptionalID reads a positive integer query parameter; an empty value yields nil.
func parseOptionalID(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return &id, nil
}

// parseQueryInt reads an unsigned integer query value; empty yields def.
// Range normalization is left to pagination.ValidateParams.
func parseQueryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return int(parsed), nil
}

// parsePage reads the page and limit query values.
func parsePage(c *fiber.Ctx) (page, limit int, err error) {
	if page, err = parseQueryInt(c, "page", pagination.DefaultPage); err != nil {
		return 0, 0, err
	}
	if limit, err = parseQueryInt(c, "limit", pagination.DefaultLimit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

type normalizer interface {
	Normalize()
}

// parseBody decodes a JSON request body and validates it.
func parseBody(c *fiber.Ctx, out normalizer) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	out.Normalize()
	return dto.Validate(out)
}
