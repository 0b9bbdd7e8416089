package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// Allocation es la cantidad a descontar de un lote concreto.
type Allocation struct {
	Batch  *entity.StockBatch
	Amount decimal.Decimal
}

// FEFOLess define el orden First-Expired-First-Out: vencimiento ascendente, lotes sin vencimiento
// al final, empates por fecha de creación (el más antiguo primero) y finalmente por ID.
func FEFOLess(a, b *entity.StockBatch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate != nil:
		return false
	case a.ExpiryDate != nil && b.ExpiryDate == nil:
		return true
	case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortFEFO ordena los lotes in-place en orden FEFO.
func SortFEFO(batches []*entity.StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return FEFOLess(batches[i], batches[j])
	})
}

// PlanDepletion recorre los lotes (ya ordenados FEFO) y decide cuánto tomar de cada uno hasta cubrir
// quantity. No modifica los lotes. Devuelve el faltante si el stock no alcanza.
func PlanDepletion(batches []*entity.StockBatch, quantity decimal.Decimal) ([]Allocation, decimal.Decimal) {
	remaining := quantity
	var plan []Allocation
	for _, b := range batches {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		if !b.HasStock() {
			continue
		}
		take := decimal.Min(remaining, b.Quantity)
		plan = append(plan, Allocation{Batch: b, Amount: take})
		remaining = remaining.Sub(take)
	}
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}
	return plan, remaining
}
