package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// AdjustmentRepository libro de ajustes: sólo inserción y consulta.
type AdjustmentRepository interface {
	Create(ctx context.Context, adjustment *entity.StockAdjustment) error
	// ListByProductUnit ordena del más reciente al más antiguo.
	ListByProductUnit(ctx context.Context, productID, unitID string, limit, offset int) ([]*entity.StockAdjustment, error)
}
