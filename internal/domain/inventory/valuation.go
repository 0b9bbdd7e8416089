package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// CostCalculator costo promedio ponderado al incorporar una cantidad con su costo:
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// WeightedAverageCost costo promedio de los lotes con existencias y precio de compra conocido.
func WeightedAverageCost(batches []*entity.StockBatch) decimal.Decimal {
	qty, cost := decimal.Zero, decimal.Zero
	for _, b := range batches {
		if !b.HasStock() || b.PurchasePrice == nil {
			continue
		}
		cost = CostCalculator(qty, cost, b.Quantity, *b.PurchasePrice)
		qty = qty.Add(b.Quantity)
	}
	return cost
}

// BatchValue valor del remanente de un lote al precio de compra (cero si no tiene precio).
func BatchValue(b *entity.StockBatch) decimal.Decimal {
	if b.PurchasePrice == nil {
		return decimal.Zero
	}
	return b.Quantity.Mul(*b.PurchasePrice)
}

// ConsumedCost valoriza lo consumido en una operación FEFO a precio de compra de cada lote.
func ConsumedCost(consumed []entity.ConsumedBatch) decimal.Decimal {
	total := decimal.Zero
	for _, c := range consumed {
		if c.PurchasePrice != nil {
			total = total.Add(c.Amount.Mul(*c.PurchasePrice))
		}
	}
	return total
}
