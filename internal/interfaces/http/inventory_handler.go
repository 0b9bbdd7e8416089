package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	domaininv "github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// InventoryHandler maneja lotes, consumos FEFO, ajustes y vencimientos (protegido).
type InventoryHandler struct {
	ledger       *inventory.BatchLedger
	allocator    *inventory.FefoAllocator
	recorder     *inventory.AdjustmentRecorder
	report       *inventory.ExpiryReport
	expiryWindow int
}

// NewInventoryHandler construye el handler. expiryWindow es la ventana de "próximo a vencer" en días.
func NewInventoryHandler(
	ledger *inventory.BatchLedger,
	allocator *inventory.FefoAllocator,
	recorder *inventory.AdjustmentRecorder,
	report *inventory.ExpiryReport,
	expiryWindow int,
) *InventoryHandler {
	if expiryWindow <= 0 {
		expiryWindow = domaininv.DefaultExpiringSoonDays
	}
	return &InventoryHandler{
		ledger:       ledger,
		allocator:    allocator,
		recorder:     recorder,
		report:       report,
		expiryWindow: expiryWindow,
	}
}

// ReceiveBatch godoc
// @Summary      Registrar lote recibido
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "product_id, unit_id, batch_number, quantity"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *InventoryHandler) ReceiveBatch(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.ledger.ReceiveBatch(c.Context(), inventory.ReceiveBatchInput{
		ProductID:     in.ProductID,
		UnitID:        in.UnitID,
		BatchNumber:   in.BatchNumber,
		Quantity:      in.Quantity,
		ExpiryDate:    in.ExpiryDate,
		PurchasePrice: in.PurchasePrice,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// ListBatches godoc
// @Summary      Lotes de un producto en orden FEFO
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        productId     path   string  true   "ID del producto"
// @Param        include_zero  query  bool    false  "Incluir lotes agotados"
// @Param        unit_id       query  string  false  "Filtrar por unidad"
// @Success      200  {array}   dto.BatchResponse
// @Router       /api/products/{productId}/batches [get]
func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	opts := inventory.ListBatchesOptions{
		IncludeZero: c.QueryBool("include_zero", false),
		UnitID:      query(c, "unit_id"),
	}
	now := time.Now()
	out := make([]dto.BatchResponse, 0)
	for b, err := range h.ledger.ListBatches(c.Context(), param(c, "productId"), opts) {
		if err != nil {
			return writeError(c, err)
		}
		out = append(out, dto.BatchFromEntity(b, domaininv.ClassifyWithWindow(b.ExpiryDate, now, h.expiryWindow)))
	}
	return c.JSON(out)
}

// DeleteBatch godoc
// @Summary      Eliminar lote
// @Description  Descuenta la cantidad restante del agregado. En modo estricto sólo se aceptan lotes en cero.
// @Tags         batches
// @Security     Bearer
// @Param        id  path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *fiber.Ctx) error {
	if err := h.ledger.DeleteBatch(c.Context(), param(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Deplete godoc
// @Summary      Consumir stock en orden FEFO
// @Description  Si no alcanza, consume todo lo disponible y reporta el faltante en shortfall.
// @Tags         depletions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DepleteRequest  true  "product_id, unit_id, quantity, reason"
// @Success      200  {object}  dto.DepletionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/depletions [post]
func (h *InventoryHandler) Deplete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.DepleteRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	res, err := h.allocator.Deplete(c.Context(), inventory.DepleteInput{
		ProductID:      in.ProductID,
		UnitID:         in.UnitID,
		Quantity:       in.Quantity,
		QuantityUnitID: in.QuantityUnitID,
		Reason:         in.Reason,
		ActorID:        userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DepletionFromEntity(res))
}

// Adjust godoc
// @Summary      Ajustar existencia a una cantidad absoluta
// @Description  Las disminuciones consumen lotes en orden FEFO; los aumentos deben registrarse como lote.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "product_id, unit_id, new_quantity, reason"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	id, err := h.recorder.Adjust(c.Context(), inventory.AdjustInput{
		ProductID:   in.ProductID,
		UnitID:      in.UnitID,
		NewQuantity: in.NewQuantity,
		Reason:      in.Reason,
		Description: in.Description,
		ActorID:     userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// ListAdjustments godoc
// @Summary      Historial de ajustes del par
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        unitId     path   string  true   "ID de la unidad"
// @Param        limit      query  int     false  "Máximo (default 50)"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.AdjustmentListResponse
// @Router       /api/products/{productId}/units/{unitId}/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida", Details: formatValidationErrors(err)})
	}
	page.Normalize()
	list, err := h.recorder.ListAdjustments(c.Context(), param(c, "productId"), param(c, "unitId"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AdjustmentListResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, HasMore: len(list) == page.Limit},
	}
	for _, a := range list {
		out.Items = append(out.Items, dto.AdjustmentFromEntity(a))
	}
	return c.JSON(out)
}

// ExpiryReport godoc
// @Summary      Reporte de vencimientos del producto
// @Tags         expiry
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        unit_id    query  string  false  "Limitar a una unidad (habilita average_cost)"
// @Success      200  {object}  dto.ExpiryReportResponse
// @Router       /api/products/{productId}/expiry [get]
func (h *InventoryHandler) ExpiryReport(c *fiber.Ctx) error {
	res, err := h.report.Build(c.Context(), param(c, "productId"), query(c, "unit_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ExpiryReportResponse{
		ProductID:   res.ProductID,
		GeneratedAt: res.GeneratedAt,
		Counts:      res.Counts,
		ValueAtRisk: res.ValueAtRisk,
		AverageCost: res.AverageCost,
		Batches:     make([]dto.BatchResponse, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		out.Batches = append(out.Batches, dto.BatchFromEntity(e.Batch, e.Status))
	}
	return c.JSON(out)
}
