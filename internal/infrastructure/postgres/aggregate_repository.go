package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.AggregateRepository = (*AggregateRepo)(nil)

// AggregateRepo implementación de AggregateRepository sobre PostgreSQL (usable con pool o tx).
type AggregateRepo struct {
	q Querier
}

// NewAggregateRepository construye el adaptador de agregados. Pasar pool o tx (Querier).
func NewAggregateRepository(q Querier) *AggregateRepo {
	return &AggregateRepo{q: q}
}

const aggregateColumns = `product_id, unit_id, quantity, low_quantity_threshold, alert_enabled, updated_at`

func scanAggregate(row pgx.Row) (*entity.AggregateQuantity, error) {
	var a entity.AggregateQuantity
	if err := row.Scan(&a.ProductID, &a.UnitID, &a.Quantity, &a.LowQuantityThreshold, &a.AlertEnabled, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AggregateRepo) getOne(ctx context.Context, op, query, productID, unitID string) (*entity.AggregateQuantity, error) {
	a, err := scanAggregate(r.q.QueryRow(ctx, query, productID, unitID))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return a, nil
}

// Get obtiene el agregado del par; nil, nil si no existe.
func (r *AggregateRepo) Get(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error) {
	return r.getOne(ctx, "get aggregate",
		`SELECT `+aggregateColumns+` FROM aggregate_quantities WHERE product_id = $1 AND unit_id = $2`,
		productID, unitID)
}

// GetForUpdate obtiene el agregado y bloquea la fila (SELECT FOR UPDATE).
func (r *AggregateRepo) GetForUpdate(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error) {
	return r.getOne(ctx, "get aggregate for update",
		`SELECT `+aggregateColumns+` FROM aggregate_quantities WHERE product_id = $1 AND unit_id = $2 FOR UPDATE`,
		productID, unitID)
}

// LockOrCreate inserta la fila si falta (dos altas concurrentes convergen en la misma fila)
// y la devuelve bloqueada.
func (r *AggregateRepo) LockOrCreate(ctx context.Context, defaults *entity.AggregateQuantity) (*entity.AggregateQuantity, error) {
	insert := `
		INSERT INTO aggregate_quantities (product_id, unit_id, quantity, low_quantity_threshold, alert_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (product_id, unit_id) DO NOTHING`
	_, err := r.q.Exec(ctx, insert,
		defaults.ProductID, defaults.UnitID, defaults.Quantity, defaults.LowQuantityThreshold, defaults.AlertEnabled,
	)
	if err != nil {
		return nil, mapError("insert aggregate", err)
	}
	agg, err := r.GetForUpdate(ctx, defaults.ProductID, defaults.UnitID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, fmt.Errorf("lock aggregate %s/%s: %w", defaults.ProductID, defaults.UnitID, domain.ErrNotFound)
	}
	return agg, nil
}

// SetQuantity fija la cantidad agregada del par.
func (r *AggregateRepo) SetQuantity(ctx context.Context, productID, unitID string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE aggregate_quantities SET quantity = $3, updated_at = now() WHERE product_id = $1 AND unit_id = $2`,
		productID, unitID, quantity)
	if err != nil {
		return mapError("set aggregate quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetThreshold configura umbral y alerta del par.
func (r *AggregateRepo) SetThreshold(ctx context.Context, productID, unitID string, threshold decimal.Decimal, alertEnabled bool) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE aggregate_quantities
		SET low_quantity_threshold = $3, alert_enabled = $4, updated_at = now()
		WHERE product_id = $1 AND unit_id = $2`,
		productID, unitID, threshold, alertEnabled)
	if err != nil {
		return mapError("set aggregate threshold", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AggregateRepo) list(ctx context.Context, op, query string) ([]*entity.AggregateQuantity, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.AggregateQuantity
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List todas las filas de agregado.
func (r *AggregateRepo) List(ctx context.Context) ([]*entity.AggregateQuantity, error) {
	return r.list(ctx, "list aggregates",
		`SELECT `+aggregateColumns+` FROM aggregate_quantities ORDER BY product_id, unit_id`)
}

// ListLowStock filas con alerta activa y cantidad <= umbral.
func (r *AggregateRepo) ListLowStock(ctx context.Context) ([]*entity.AggregateQuantity, error) {
	return r.list(ctx, "list low stock", `
		SELECT `+aggregateColumns+` FROM aggregate_quantities
		WHERE alert_enabled AND quantity <= low_quantity_threshold
		ORDER BY product_id, unit_id`)
}

// UnitIDsByProduct unidades con fila de agregado para el producto.
func (r *AggregateRepo) UnitIDsByProduct(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT unit_id FROM aggregate_quantities WHERE product_id = $1 ORDER BY unit_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("aggregate units: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("aggregate units: %w", err)
	}
	return ids, nil
}
