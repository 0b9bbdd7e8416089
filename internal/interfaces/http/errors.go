package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Orden de evaluación: el primer error que coincide con errors.Is define la respuesta.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrIncompatibleUnits, fiber.StatusBadRequest, "INCOMPATIBLE_UNITS"},
	{domain.ErrInvalidUnitGroup, fiber.StatusBadRequest, "INVALID_UNIT_GROUP"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateBatch, fiber.StatusConflict, "DUPLICATE_BATCH"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION"},
	{domain.ErrNonZeroBatchDeletion, fiber.StatusConflict, "NON_ZERO_BATCH"},
	{domain.ErrUnattributedIncrease, fiber.StatusConflict, "UNATTRIBUTED_INCREASE"},
	{domain.ErrUnitInUse, fiber.StatusConflict, "UNIT_IN_USE"},
	{domain.ErrAggregateDrift, fiber.StatusConflict, "AGGREGATE_DRIFT"},
}

// writeError traduce un error de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// param copia el parámetro de ruta: fiber reutiliza el buffer de la petición.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func query(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Query(name))
}
