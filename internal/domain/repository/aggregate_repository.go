package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// AggregateRepository puerto de persistencia para la proyección AggregateQuantity.
// Todas las mutaciones de un par (producto, unidad) bloquean primero su fila de agregado.
type AggregateRepository interface {
	// Get devuelve nil, nil si el par no tiene fila.
	Get(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error)
	// LockOrCreate inserta la fila con los valores de defaults si falta y la devuelve bloqueada.
	LockOrCreate(ctx context.Context, defaults *entity.AggregateQuantity) (*entity.AggregateQuantity, error)
	SetQuantity(ctx context.Context, productID, unitID string, quantity decimal.Decimal) error
	SetThreshold(ctx context.Context, productID, unitID string, threshold decimal.Decimal, alertEnabled bool) error
	List(ctx context.Context) ([]*entity.AggregateQuantity, error)
	// ListLowStock filas con alerta activa y cantidad <= umbral.
	ListLowStock(ctx context.Context) ([]*entity.AggregateQuantity, error)
	UnitIDsByProduct(ctx context.Context, productID string) ([]string, error)
}
