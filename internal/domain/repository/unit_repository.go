package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// UnitRepository puerto de persistencia para unidades de medida.
type UnitRepository interface {
	List(ctx context.Context) ([]entity.Unit, error)
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Unit, error)
	Create(ctx context.Context, unit *entity.Unit) error
	Delete(ctx context.Context, id string) error
	// IsReferenced indica si algún lote o agregado usa la unidad.
	IsReferenced(ctx context.Context, id string) (bool, error)
}
