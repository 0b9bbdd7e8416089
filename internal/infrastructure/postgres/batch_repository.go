package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const (
	batchColumns = `id, product_id, unit_id, batch_number, expiry_date, quantity, purchase_price, notes, created_at`
	// fefoOrder vencimiento ascendente, sin vencimiento al final, empates por creación e id.
	fefoOrder = `ORDER BY expiry_date ASC NULLS LAST, created_at ASC, id ASC`
)

func scanBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	err := row.Scan(&b.ID, &b.ProductID, &b.UnitID, &b.BatchNumber, &b.ExpiryDate,
		&b.Quantity, &b.PurchasePrice, &b.Notes, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBatches(rows pgx.Rows) ([]*entity.StockBatch, error) {
	defer rows.Close()
	var out []*entity.StockBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create inserta el lote. Número repetido para el producto -> ErrDuplicateBatch.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.ProductID, batch.UnitID, batch.BatchNumber, batch.ExpiryDate,
		batch.Quantity, batch.PurchasePrice, batch.Notes, batch.CreatedAt,
	)
	return mapError("create batch", err)
}

// GetByID obtiene un lote; nil, nil si no existe.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.StockBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM stock_batches WHERE id = $1`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM stock_batches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, mapError("get batch for update", err)
	}
	return b, nil
}

// ExistsBatchNumber indica si el producto ya tiene un lote con ese número.
func (r *BatchRepo) ExistsBatchNumber(ctx context.Context, productID, batchNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_batches WHERE product_id = $1 AND batch_number = $2)`,
		productID, batchNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists batch number: %w", err)
	}
	return exists, nil
}

// ListByProduct lista los lotes del producto en orden FEFO con filtro y paginación.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string, filter repository.BatchFilter) ([]*entity.StockBatch, error) {
	var sb strings.Builder
	args := []any{productID}
	sb.WriteString(`SELECT ` + batchColumns + ` FROM stock_batches WHERE product_id = $1`)
	if filter.UnitID != "" {
		args = append(args, filter.UnitID)
		fmt.Fprintf(&sb, ` AND unit_id = $%d`, len(args))
	}
	if !filter.IncludeZero {
		sb.WriteString(` AND quantity > 0`)
	}
	sb.WriteString(" " + fefoOrder)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}
	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return collectBatches(rows)
}

// ListAvailableForUpdate bloquea en orden FEFO los lotes con existencias del par.
func (r *BatchRepo) ListAvailableForUpdate(ctx context.Context, productID, unitID string) ([]*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stock_batches
		WHERE product_id = $1 AND unit_id = $2 AND quantity > 0
		` + fefoOrder + `
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, unitID)
	if err != nil {
		return nil, mapError("list batches for update", err)
	}
	out, err := collectBatches(rows)
	if err != nil {
		return nil, mapError("list batches for update", err)
	}
	return out, nil
}

// UpdateQuantity fija el remanente del lote.
func (r *BatchRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_batches SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return mapError("update batch quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el lote.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_batches WHERE id = $1`, id)
	if err != nil {
		return mapError("delete batch", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumLive suma los remanentes de los lotes del par.
func (r *BatchRepo) SumLive(ctx context.Context, productID, unitID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_batches WHERE product_id = $1 AND unit_id = $2`,
		productID, unitID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum batches: %w", err)
	}
	return sum, nil
}

// UnitIDsByProduct unidades en las que el producto tiene lotes.
func (r *BatchRepo) UnitIDsByProduct(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT unit_id FROM stock_batches WHERE product_id = $1 ORDER BY unit_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("batch units: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("batch units: %w", err)
	}
	return ids, nil
}
