package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// DefaultUnits unidades iniciales; mismos IDs que la migración 000002_seed_units.
func DefaultUnits() []entity.Unit {
	unit := func(id, code, name, factor string, base bool, group string) entity.Unit {
		return entity.Unit{
			ID:               id,
			Code:             code,
			Name:             name,
			ConversionFactor: decimal.RequireFromString(factor),
			IsBaseUnit:       base,
			GroupID:          group,
		}
	}
	return []entity.Unit{
		unit("6f1c1d2e-0001-4000-8000-000000000001", "kg", "Kilogramo", "1", true, "masa"),
		unit("6f1c1d2e-0001-4000-8000-000000000002", "g", "Gramo", "0.001", false, "masa"),
		unit("6f1c1d2e-0001-4000-8000-000000000003", "lb", "Libra", "0.45359237", false, "masa"),
		unit("6f1c1d2e-0002-4000-8000-000000000001", "l", "Litro", "1", true, "volumen"),
		unit("6f1c1d2e-0002-4000-8000-000000000002", "ml", "Mililitro", "0.001", false, "volumen"),
		unit("6f1c1d2e-0003-4000-8000-000000000001", "und", "Unidad", "1", true, "conteo"),
	}
}
