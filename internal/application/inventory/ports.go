package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Units       repository.UnitRepository
	Batches     repository.BatchRepository
	Aggregates  repository.AggregateRepository
	Adjustments repository.AdjustmentRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. No reintenta.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// AggregateCache caché de lectura de AggregateQuantity para pantallas de catálogo.
// Se invalida después de cada commit que toca el par.
type AggregateCache interface {
	Get(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, bool, error)
	Set(ctx context.Context, agg *entity.AggregateQuantity, ttl time.Duration) error
	Delete(ctx context.Context, productID, unitID string) error
}

// Settings políticas configurables del núcleo de inventario.
type Settings struct {
	// StrictBatchDeletion rechaza borrar lotes con existencias (ErrNonZeroBatchDeletion).
	StrictBatchDeletion      bool
	ExpiringSoonDays         int
	DefaultLowStockThreshold decimal.Decimal
	DefaultAlertEnabled      bool
	AggregateCacheTTL        time.Duration
	// Now reloj inyectable; nil = time.Now.
	Now func() time.Time
}

// DefaultSettings valores por defecto (borrado no estricto, ventana de 30 días).
func DefaultSettings() Settings {
	return Settings{
		ExpiringSoonDays:         inventory.DefaultExpiringSoonDays,
		DefaultLowStockThreshold: decimal.Zero,
		DefaultAlertEnabled:      true,
		AggregateCacheTTL:        time.Minute,
	}
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
