package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// CreateUnitRequest body para POST /api/units.
type CreateUnitRequest struct {
	Code             string          `json:"code" validate:"required,max=32"`
	Name             string          `json:"name" validate:"max=128"`
	ConversionFactor decimal.Decimal `json:"conversion_factor" validate:"gt=0"`
	IsBaseUnit       bool            `json:"is_base_unit"`
	GroupID          string          `json:"group_id" validate:"required,max=64"`
}

// UnitResponse unidad de medida.
type UnitResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	IsBaseUnit       bool            `json:"is_base_unit"`
	GroupID          string          `json:"group_id"`
}

// ConvertResponse resultado de GET /api/units/convert.
type ConvertResponse struct {
	Quantity decimal.Decimal `json:"quantity"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Result   decimal.Decimal `json:"result"`
	// Display resultado redondeado para pantalla.
	Display string `json:"display"`
}

// ReceiveBatchRequest body para POST /api/batches.
type ReceiveBatchRequest struct {
	ProductID     string           `json:"product_id" validate:"required,max=64"`
	UnitID        string           `json:"unit_id" validate:"required,max=64"`
	BatchNumber   string           `json:"batch_number" validate:"required,max=64"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"gt=0"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	Notes         string           `json:"notes,omitempty" validate:"max=500"`
}

// ExpiryStatusDTO frescura de un lote.
type ExpiryStatusDTO struct {
	Bucket   string `json:"bucket"`
	DaysLeft *int   `json:"days_left,omitempty"`
}

// BatchResponse lote con su clasificación de vencimiento.
type BatchResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	UnitID        string           `json:"unit_id"`
	BatchNumber   string           `json:"batch_number"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	Expiry        ExpiryStatusDTO  `json:"expiry"`
}

// DepleteRequest body para POST /api/depletions.
type DepleteRequest struct {
	ProductID      string          `json:"product_id" validate:"required,max=64"`
	UnitID         string          `json:"unit_id" validate:"required,max=64"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gt=0"`
	QuantityUnitID string          `json:"quantity_unit_id,omitempty" validate:"max=64"`
	Reason         string          `json:"reason" validate:"required,oneof=sale waste transfer_out adjustment"`
}

// ConsumedBatchDTO parte de un consumo tomada de un lote.
type ConsumedBatchDTO struct {
	BatchID       string           `json:"batch_id"`
	BatchNumber   string           `json:"batch_number"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// DepletionResponse resultado de un consumo FEFO.
type DepletionResponse struct {
	ProductID       string             `json:"product_id"`
	UnitID          string             `json:"unit_id"`
	Requested       decimal.Decimal    `json:"requested"`
	Consumed        decimal.Decimal    `json:"consumed"`
	Shortfall       decimal.Decimal    `json:"shortfall"`
	ConsumedCost    decimal.Decimal    `json:"consumed_cost"`
	ConsumedBatches []ConsumedBatchDTO `json:"consumed_batches"`
}

// AdjustRequest body para POST /api/adjustments.
type AdjustRequest struct {
	ProductID   string          `json:"product_id" validate:"required,max=64"`
	UnitID      string          `json:"unit_id" validate:"required,max=64"`
	NewQuantity decimal.Decimal `json:"new_quantity" validate:"gte=0"`
	Reason      string          `json:"reason" validate:"required,oneof=manual_adjustment stock_take damage theft return transfer correction"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// AdjustmentResponse entrada del libro de ajustes.
type AdjustmentResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	UnitID         string          `json:"unit_id"`
	BeforeQuantity decimal.Decimal `json:"before_quantity"`
	AfterQuantity  decimal.Decimal `json:"after_quantity"`
	Delta          decimal.Decimal `json:"delta"`
	Reason         string          `json:"reason"`
	Description    string          `json:"description,omitempty"`
	ActorID        string          `json:"actor_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AdjustmentListResponse página del historial de ajustes, del más reciente al más antiguo.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// AggregateResponse cantidad agregada de un (producto, unidad).
type AggregateResponse struct {
	ProductID            string          `json:"product_id"`
	UnitID               string          `json:"unit_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	LowQuantityThreshold decimal.Decimal `json:"low_quantity_threshold"`
	AlertEnabled         bool            `json:"alert_enabled"`
	IsLow                bool            `json:"is_low"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// SetThresholdRequest body para PUT .../threshold.
type SetThresholdRequest struct {
	Threshold    decimal.Decimal `json:"threshold" validate:"gte=0"`
	AlertEnabled *bool           `json:"alert_enabled" validate:"required"`
}

// ReconcileResponse desvío corregido por reconcile.
type ReconcileResponse struct {
	ProductID string          `json:"product_id"`
	UnitID    string          `json:"unit_id"`
	Delta     decimal.Decimal `json:"delta"`
}

// ExpiryReportResponse reporte de vencimientos de un producto.
type ExpiryReportResponse struct {
	ProductID   string          `json:"product_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Counts      map[string]int  `json:"counts"`
	ValueAtRisk decimal.Decimal `json:"value_at_risk"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Batches     []BatchResponse `json:"batches"`
}

// UnitFromEntity convierte una unidad de dominio.
func UnitFromEntity(u entity.Unit) UnitResponse {
	return UnitResponse{
		ID:               u.ID,
		Code:             u.Code,
		Name:             u.Name,
		ConversionFactor: u.ConversionFactor,
		IsBaseUnit:       u.IsBaseUnit,
		GroupID:          u.GroupID,
	}
}

// ExpiryFromStatus convierte la clasificación; sin vencimiento no lleva días.
func ExpiryFromStatus(s inventory.ExpiryStatus) ExpiryStatusDTO {
	out := ExpiryStatusDTO{Bucket: s.Bucket}
	if s.Bucket != inventory.ExpiryNone {
		days := s.DaysLeft
		out.DaysLeft = &days
	}
	return out
}

// BatchFromEntity convierte un lote con su clasificación.
func BatchFromEntity(b *entity.StockBatch, status inventory.ExpiryStatus) BatchResponse {
	return BatchResponse{
		ID:            b.ID,
		ProductID:     b.ProductID,
		UnitID:        b.UnitID,
		BatchNumber:   b.BatchNumber,
		ExpiryDate:    b.ExpiryDate,
		Quantity:      b.Quantity,
		PurchasePrice: b.PurchasePrice,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		Expiry:        ExpiryFromStatus(status),
	}
}

// DepletionFromEntity convierte el resultado de un consumo.
func DepletionFromEntity(r *entity.DepletionResult) DepletionResponse {
	out := DepletionResponse{
		ProductID:       r.ProductID,
		UnitID:          r.UnitID,
		Requested:       r.Requested,
		Consumed:        r.Consumed,
		Shortfall:       r.Shortfall,
		ConsumedCost:    r.ConsumedCost,
		ConsumedBatches: make([]ConsumedBatchDTO, 0, len(r.ConsumedBatches)),
	}
	for _, c := range r.ConsumedBatches {
		out.ConsumedBatches = append(out.ConsumedBatches, ConsumedBatchDTO{
			BatchID:       c.BatchID,
			BatchNumber:   c.BatchNumber,
			ExpiryDate:    c.ExpiryDate,
			Amount:        c.Amount,
			PurchasePrice: c.PurchasePrice,
		})
	}
	return out
}

// AdjustmentFromEntity convierte una entrada del libro de ajustes.
func AdjustmentFromEntity(a *entity.StockAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID,
		ProductID:      a.ProductID,
		UnitID:         a.UnitID,
		BeforeQuantity: a.BeforeQuantity,
		AfterQuantity:  a.AfterQuantity,
		Delta:          a.Delta(),
		Reason:         a.Reason,
		Description:    a.Description,
		ActorID:        a.ActorID,
		CreatedAt:      a.CreatedAt,
	}
}

// AggregateFromEntity convierte una fila de agregado.
func AggregateFromEntity(a *entity.AggregateQuantity) AggregateResponse {
	return AggregateResponse{
		ProductID:            a.ProductID,
		UnitID:               a.UnitID,
		Quantity:             a.Quantity,
		LowQuantityThreshold: a.LowQuantityThreshold,
		AlertEnabled:         a.AlertEnabled,
		IsLow:                a.IsLow(),
		UpdatedAt:            a.UpdatedAt,
	}
}
