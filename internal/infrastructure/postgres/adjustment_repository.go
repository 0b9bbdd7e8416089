package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo libro de ajustes sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador de ajustes. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create inserta el ajuste.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments
			(id, product_id, unit_id, before_quantity, after_quantity, reason, description, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, a.UnitID, a.BeforeQuantity, a.AfterQuantity, a.Reason, a.Description, a.ActorID, a.CreatedAt,
	)
	return mapError("create adjustment", err)
}

// ListByProductUnit historial del par, del más reciente al más antiguo.
func (r *AdjustmentRepo) ListByProductUnit(ctx context.Context, productID, unitID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id, product_id, unit_id, before_quantity, after_quantity, reason, description, actor_id, created_at
		FROM stock_adjustments
		WHERE product_id = $1 AND unit_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, productID, unitID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.UnitID, &a.BeforeQuantity, &a.AfterQuantity,
			&a.Reason, &a.Description, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
