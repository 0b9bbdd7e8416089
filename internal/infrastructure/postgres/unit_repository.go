package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo implementación de UnitRepository sobre PostgreSQL (usable con pool o tx).
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = `id, code, name, conversion_factor, is_base_unit, group_id, created_at`

// List devuelve todas las unidades configuradas.
func (r *UnitRepo) List(ctx context.Context) ([]entity.Unit, error) {
	rows, err := r.q.Query(ctx, `SELECT `+unitColumns+` FROM units ORDER BY group_id, lower(code)`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var out []entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Code, &u.Name, &u.ConversionFactor, &u.IsBaseUnit, &u.GroupID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID obtiene una unidad; nil, nil si no existe.
func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	var u entity.Unit
	err := r.q.QueryRow(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1`, id).Scan(
		&u.ID, &u.Code, &u.Name, &u.ConversionFactor, &u.IsBaseUnit, &u.GroupID, &u.CreatedAt,
	)
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// Create inserta la unidad. Código repetido o segunda base del grupo -> ErrInvalidUnitGroup.
func (r *UnitRepo) Create(ctx context.Context, unit *entity.Unit) error {
	query := `
		INSERT INTO units (id, code, name, conversion_factor, is_base_unit, group_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		unit.ID, unit.Code, unit.Name, unit.ConversionFactor, unit.IsBaseUnit, unit.GroupID, unit.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create unit: %w", domain.ErrInvalidUnitGroup)
		}
		return mapError("create unit", err)
	}
	return nil
}

// Delete elimina la unidad. Las FK ON DELETE RESTRICT protegen las referencias.
func (r *UnitRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		if code, _ := pgCode(err); code == codeForeignKeyViolation {
			return fmt.Errorf("delete unit: %w", domain.ErrUnitInUse)
		}
		return mapError("delete unit", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsReferenced indica si algún lote, agregado o ajuste usa la unidad.
func (r *UnitRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM stock_batches WHERE unit_id = $1)
		    OR EXISTS (SELECT 1 FROM aggregate_quantities WHERE unit_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_adjustments WHERE unit_id = $1)`
	var used bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&used); err != nil {
		return false, fmt.Errorf("unit references: %w", err)
	}
	return used, nil
}
