package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

const displayPlaces = 4

// UnitHandler maneja unidades de medida y conversiones.
type UnitHandler struct {
	units *inventory.UnitService
}

// NewUnitHandler construye el handler.
func NewUnitHandler(units *inventory.UnitService) *UnitHandler {
	return &UnitHandler{units: units}
}

func unitsResponse(units []entity.Unit) []dto.UnitResponse {
	out := make([]dto.UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, dto.UnitFromEntity(u))
	}
	return out
}

// List godoc
// @Summary      Listar unidades de medida
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UnitResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/units [get]
func (h *UnitHandler) List(c *fiber.Ctx) error {
	units, err := h.units.ListUnits(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(unitsResponse(units))
}

// ListForProduct godoc
// @Summary      Unidades usadas por un producto
// @Description  Unidades con lotes o agregado del producto; si no hay ninguna, todas las configuradas.
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {array}   dto.UnitResponse
// @Router       /api/products/{productId}/units [get]
func (h *UnitHandler) ListForProduct(c *fiber.Ctx) error {
	units, err := h.units.ListUnitsForProduct(c.Context(), param(c, "productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(unitsResponse(units))
}

// Create godoc
// @Summary      Crear unidad de medida
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUnitRequest  true  "code, factor y grupo"
// @Success      201  {object}  dto.UnitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/units [post]
func (h *UnitHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUnitRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	u, err := h.units.CreateUnit(c.Context(), inventory.CreateUnitInput{
		Code:             in.Code,
		Name:             in.Name,
		ConversionFactor: in.ConversionFactor,
		IsBaseUnit:       in.IsBaseUnit,
		GroupID:          in.GroupID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UnitFromEntity(*u))
}

// Delete godoc
// @Summary      Eliminar unidad de medida
// @Tags         units
// @Security     Bearer
// @Param        id  path  string  true  "ID de la unidad"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/units/{id} [delete]
func (h *UnitHandler) Delete(c *fiber.Ctx) error {
	if err := h.units.DeleteUnit(c.Context(), param(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Convert godoc
// @Summary      Convertir cantidad entre unidades
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        quantity  query  string  true  "Cantidad decimal"
// @Param        from      query  string  true  "Unidad origen"
// @Param        to        query  string  true  "Unidad destino"
// @Success      200  {object}  dto.ConvertResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/units/convert [get]
func (h *UnitHandler) Convert(c *fiber.Ctx) error {
	qty, err := decimal.NewFromString(query(c, "quantity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser un número decimal"})
	}
	from, to := query(c, "from"), query(c, "to")
	result, err := h.units.Convert(c.Context(), qty, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConvertResponse{
		Quantity: qty,
		From:     from,
		To:       to,
		Result:   result,
		Display:  domaininv.RoundForDisplay(result, displayPlaces).String(),
	})
}
