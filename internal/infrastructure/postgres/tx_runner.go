package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout > 0 limita la espera por filas
// bloqueadas; al vencer, la operación falla con ErrConcurrentModification.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// No reintenta: los conflictos de bloqueo se devuelven como ErrConcurrentModification.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no acepta parámetros; el valor sale de la configuración y es numérico.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(inventory.TxRepos{
		Units:       NewUnitRepository(tx),
		Batches:     NewBatchRepository(tx),
		Aggregates:  NewAggregateRepository(tx),
		Adjustments: NewAdjustmentRepository(tx),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isConcurrencyFailure(err) {
			return fmt.Errorf("commit transaction: %w", domain.ErrConcurrentModification)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos devuelve repositorios sobre el pool (lecturas fuera de transacción).
func Repos(pool *pgxpool.Pool) inventory.TxRepos {
	return inventory.TxRepos{
		Units:       NewUnitRepository(pool),
		Batches:     NewBatchRepository(pool),
		Aggregates:  NewAggregateRepository(pool),
		Adjustments: NewAdjustmentRepository(pool),
	}
}

// errNoRows indica si la consulta no devolvió filas.
func errNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
