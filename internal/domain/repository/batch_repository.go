package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchFilter filtros y paginación para listar lotes de un producto.
type BatchFilter struct {
	UnitID      string // vacío = todas las unidades
	IncludeZero bool
	Limit       int
	Offset      int
}

// BatchRepository puerto de persistencia para lotes. Los listados se devuelven en orden FEFO
// (vencimiento ascendente, sin vencimiento al final, empates por creación).
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockBatch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error)
	ExistsBatchNumber(ctx context.Context, productID, batchNumber string) (bool, error)
	ListByProduct(ctx context.Context, productID string, filter BatchFilter) ([]*entity.StockBatch, error)
	// ListAvailableForUpdate lotes con cantidad > 0 del par, bloqueados para el consumo.
	ListAvailableForUpdate(ctx context.Context, productID, unitID string) ([]*entity.StockBatch, error)
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	Delete(ctx context.Context, id string) error
	// SumLive suma las cantidades de los lotes no purgados del par.
	SumLive(ctx context.Context, productID, unitID string) (decimal.Decimal, error)
	UnitIDsByProduct(ctx context.Context, productID string) ([]string, error)
}
