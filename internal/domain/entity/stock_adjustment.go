package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de ajuste de inventario.
const (
	AdjustmentReasonManual     = "manual_adjustment"
	AdjustmentReasonStockTake  = "stock_take"
	AdjustmentReasonDamage     = "damage"
	AdjustmentReasonTheft      = "theft"
	AdjustmentReasonReturn     = "return"
	AdjustmentReasonTransfer   = "transfer"
	AdjustmentReasonCorrection = "correction"
)

// ValidAdjustmentReason indica si el motivo pertenece a la enumeración cerrada.
func ValidAdjustmentReason(reason string) bool {
	switch reason {
	case AdjustmentReasonManual, AdjustmentReasonStockTake, AdjustmentReasonDamage,
		AdjustmentReasonTheft, AdjustmentReasonReturn, AdjustmentReasonTransfer,
		AdjustmentReasonCorrection:
		return true
	}
	return false
}

// StockAdjustment es un registro de auditoría inmutable (solo inserción).
type StockAdjustment struct {
	ID             string
	ProductID      string
	UnitID         string
	BeforeQuantity decimal.Decimal
	AfterQuantity  decimal.Decimal
	Reason         string
	Description    string
	ActorID        string
	CreatedAt      time.Time
}

// Delta devuelve AfterQuantity - BeforeQuantity.
func (a *StockAdjustment) Delta() decimal.Decimal {
	return a.AfterQuantity.Sub(a.BeforeQuantity)
}
