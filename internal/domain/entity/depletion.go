package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de consumo de lotes.
const (
	DepletionReasonSale        = "sale"
	DepletionReasonWaste       = "waste"
	DepletionReasonTransferOut = "transfer_out"
	DepletionReasonAdjustment  = "adjustment"
)

// ValidDepletionReason indica si el motivo de consumo es conocido.
func ValidDepletionReason(reason string) bool {
	switch reason {
	case DepletionReasonSale, DepletionReasonWaste, DepletionReasonTransferOut, DepletionReasonAdjustment:
		return true
	}
	return false
}

// ConsumedBatch es la porción consumida de un lote en una operación FEFO.
type ConsumedBatch struct {
	BatchID       string
	BatchNumber   string
	ExpiryDate    *time.Time
	Amount        decimal.Decimal
	PurchasePrice *decimal.Decimal
}

// DepletionResult resume un consumo FEFO. Shortfall = Requested - Consumed.
type DepletionResult struct {
	ProductID       string
	UnitID          string
	Requested       decimal.Decimal
	Consumed        decimal.Decimal
	Shortfall       decimal.Decimal
	ConsumedCost    decimal.Decimal
	ConsumedBatches []ConsumedBatch
}

// HasShortfall indica si quedó cantidad sin satisfacer.
func (r *DepletionResult) HasShortfall() bool {
	return r.Shortfall.GreaterThan(decimal.Zero)
}
