package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit representa una unidad de medida dentro de un grupo de conversión.
// ConversionFactor expresa cuántas unidades base equivale una unidad de este tipo.
type Unit struct {
	ID               string
	Code             string
	Name             string
	ConversionFactor decimal.Decimal
	IsBaseUnit       bool
	GroupID          string
	CreatedAt        time.Time
}
