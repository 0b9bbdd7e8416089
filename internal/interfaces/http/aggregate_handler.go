package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

// AggregateHandler expone la proyección de existencias por (producto, unidad).
type AggregateHandler struct {
	projector *inventory.AggregateProjector
}

// NewAggregateHandler construye el handler.
func NewAggregateHandler(projector *inventory.AggregateProjector) *AggregateHandler {
	return &AggregateHandler{projector: projector}
}

// Get godoc
// @Summary      Existencia agregada del par
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        unitId     path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.AggregateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{productId}/units/{unitId}/aggregate [get]
func (h *AggregateHandler) Get(c *fiber.Ctx) error {
	agg, err := h.projector.Get(c.Context(), param(c, "productId"), param(c, "unitId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AggregateFromEntity(agg))
}

// SetThreshold godoc
// @Summary      Configurar umbral de stock bajo
// @Tags         aggregates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string                   true  "ID del producto"
// @Param        unitId     path  string                   true  "ID de la unidad"
// @Param        body       body  dto.SetThresholdRequest  true  "threshold, alert_enabled"
// @Success      200  {object}  dto.AggregateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{productId}/units/{unitId}/aggregate/threshold [put]
func (h *AggregateHandler) SetThreshold(c *fiber.Ctx) error {
	var in dto.SetThresholdRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	productID, unitID := param(c, "productId"), param(c, "unitId")
	if err := h.projector.SetThreshold(c.Context(), productID, unitID, in.Threshold, *in.AlertEnabled); err != nil {
		return writeError(c, err)
	}
	agg, err := h.projector.Get(c.Context(), productID, unitID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AggregateFromEntity(agg))
}

// Reconcile godoc
// @Summary      Recalcular el agregado desde los lotes
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        unitId     path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/products/{productId}/units/{unitId}/aggregate/reconcile [post]
func (h *AggregateHandler) Reconcile(c *fiber.Ctx) error {
	productID, unitID := param(c, "productId"), param(c, "unitId")
	delta, err := h.projector.Reconcile(c.Context(), productID, unitID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{ProductID: productID, UnitID: unitID, Delta: delta})
}

// ReconcileAll godoc
// @Summary      Recalcular todos los agregados
// @Description  Devuelve sólo los pares que tenían desvío.
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReconcileResponse
// @Router       /api/aggregates/reconcile [post]
func (h *AggregateHandler) ReconcileAll(c *fiber.Ctx) error {
	fixed, err := h.projector.ReconcileAll(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReconcileResponse, 0, len(fixed))
	for _, r := range fixed {
		out = append(out, dto.ReconcileResponse{ProductID: r.ProductID, UnitID: r.UnitID, Delta: r.Delta})
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Pares con stock bajo
// @Tags         aggregates
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.AggregateResponse
// @Router       /api/aggregates/low-stock [get]
func (h *AggregateHandler) ListLowStock(c *fiber.Ctx) error {
	list, err := h.projector.ListLowStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AggregateResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AggregateFromEntity(a))
	}
	return c.JSON(out)
}
