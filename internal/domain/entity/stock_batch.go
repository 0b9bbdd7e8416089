package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote de un producto en una unidad concreta.
// La cantidad sólo disminuye por consumo FEFO o ajuste; un lote en cero sigue visible en el historial.
type StockBatch struct {
	ID            string
	ProductID     string
	UnitID        string
	BatchNumber   string
	ExpiryDate    *time.Time
	Quantity      decimal.Decimal
	PurchasePrice *decimal.Decimal
	Notes         string
	CreatedAt     time.Time
}

// HasStock indica si el lote tiene cantidad disponible.
func (b *StockBatch) HasStock() bool {
	return b.Quantity.GreaterThan(decimal.Zero)
}

// Deduct resta hasta quantity del lote y devuelve lo efectivamente descontado.
func (b *StockBatch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	if quantity.GreaterThan(b.Quantity) {
		deducted := b.Quantity
		b.Quantity = decimal.Zero
		return deducted
	}
	b.Quantity = b.Quantity.Sub(quantity)
	return quantity
}
