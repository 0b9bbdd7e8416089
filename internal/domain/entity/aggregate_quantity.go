package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateQuantity es la proyección desnormalizada de existencias por (producto, unidad).
// Quantity debe coincidir con la suma de los lotes vivos del par.
type AggregateQuantity struct {
	ProductID            string
	UnitID               string
	Quantity             decimal.Decimal
	LowQuantityThreshold decimal.Decimal
	AlertEnabled         bool
	UpdatedAt            time.Time
}

// IsLow indica si la alerta de stock bajo aplica al valor actual.
func (a *AggregateQuantity) IsLow() bool {
	return a.AlertEnabled && a.Quantity.LessThanOrEqual(a.LowQuantityThreshold)
}
