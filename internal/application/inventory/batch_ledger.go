package inventory

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// listPageSize tamaño de página con el que ListBatches consulta el repositorio.
const listPageSize = 100

// BatchLedger registra la entrada y baja de lotes. Cada mutación bloquea la fila de agregado del
// par (producto, unidad) y actualiza lote y agregado en la misma transacción.
type BatchLedger struct {
	txRunner  TxRunner
	units     *UnitService
	batchRepo repository.BatchRepository
	projector *AggregateProjector
	settings  Settings
	log       zerolog.Logger
}

// NewBatchLedger construye el libro de lotes.
func NewBatchLedger(
	txRunner TxRunner,
	units *UnitService,
	batchRepo repository.BatchRepository,
	projector *AggregateProjector,
	settings Settings,
	log zerolog.Logger,
) *BatchLedger {
	return &BatchLedger{
		txRunner:  txRunner,
		units:     units,
		batchRepo: batchRepo,
		projector: projector,
		settings:  settings,
		log:       log,
	}
}

// ReceiveBatchInput entrada de un lote recibido (compra o alta manual).
type ReceiveBatchInput struct {
	ProductID     string
	UnitID        string
	BatchNumber   string
	Quantity      decimal.Decimal
	ExpiryDate    *time.Time
	PurchasePrice *decimal.Decimal
	Notes         string
}

// ListBatchesOptions filtros de ListBatches.
type ListBatchesOptions struct {
	IncludeZero bool
	UnitID      string
}

// ReceiveBatch crea el lote e incrementa el agregado del par en la misma transacción.
// Toda la validación ocurre antes de abrir la transacción.
func (l *BatchLedger) ReceiveBatch(ctx context.Context, in ReceiveBatchInput) (string, error) {
	in.BatchNumber = strings.TrimSpace(in.BatchNumber)
	if in.ProductID == "" || in.UnitID == "" || in.BatchNumber == "" {
		return "", domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) || !inventory.FitsQuantityScale(in.Quantity) {
		return "", domain.ErrInvalidQuantity
	}
	if in.PurchasePrice != nil && in.PurchasePrice.IsNegative() {
		return "", domain.ErrInvalidInput
	}
	g, err := l.units.Graph(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := g.Unit(in.UnitID); !ok {
		return "", domain.ErrNotFound
	}

	now := l.settings.now()
	batch := &entity.StockBatch{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		UnitID:        in.UnitID,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		Notes:         in.Notes,
		CreatedAt:     now,
	}

	err = l.txRunner.Run(ctx, func(r TxRepos) error {
		// Bloquea el par antes de tocar lotes para serializar con consumos y ajustes.
		agg, err := l.projector.lockOrCreate(ctx, r, in.ProductID, in.UnitID)
		if err != nil {
			return err
		}
		exists, err := r.Batches.ExistsBatchNumber(ctx, in.ProductID, in.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateBatch
		}
		if err := r.Batches.Create(ctx, batch); err != nil {
			return err
		}
		return l.projector.apply(ctx, r, agg, batch.Quantity)
	})
	if err != nil {
		return "", err
	}
	l.projector.invalidate(ctx, in.ProductID, in.UnitID)

	l.log.Info().
		Str("batch_id", batch.ID).
		Str("product_id", batch.ProductID).
		Str("unit_id", batch.UnitID).
		Str("batch_number", batch.BatchNumber).
		Str("quantity", batch.Quantity.String()).
		Msg("lote recibido")
	return batch.ID, nil
}

// DeleteBatch elimina el lote y descuenta su remanente del agregado.
// En modo estricto un lote con existencias se rechaza con ErrNonZeroBatchDeletion; en modo no
// estricto el remanente desaparece del agregado sin pasar por un consumo FEFO.
func (l *BatchLedger) DeleteBatch(ctx context.Context, batchID string) error {
	if batchID == "" {
		return domain.ErrInvalidInput
	}
	current, err := l.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}

	var removed *entity.StockBatch
	err = l.txRunner.Run(ctx, func(r TxRepos) error {
		agg, err := l.projector.lockOrCreate(ctx, r, current.ProductID, current.UnitID)
		if err != nil {
			return err
		}
		// Relectura bajo bloqueo: la cantidad pudo cambiar o el lote pudo borrarse.
		batch, err := r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if l.settings.StrictBatchDeletion && batch.HasStock() {
			return domain.ErrNonZeroBatchDeletion
		}
		if err := r.Batches.Delete(ctx, batchID); err != nil {
			return err
		}
		removed = batch
		return l.projector.apply(ctx, r, agg, batch.Quantity.Neg())
	})
	if err != nil {
		return err
	}
	l.projector.invalidate(ctx, removed.ProductID, removed.UnitID)

	ev := l.log.Info()
	if removed.HasStock() {
		ev = l.log.Warn()
	}
	ev.Str("batch_id", removed.ID).
		Str("product_id", removed.ProductID).
		Str("unit_id", removed.UnitID).
		Str("remaining", removed.Quantity.String()).
		Msg("lote eliminado")
	return nil
}

// GetBatch obtiene un lote por ID.
func (l *BatchLedger) GetBatch(ctx context.Context, batchID string) (*entity.StockBatch, error) {
	b, err := l.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ListBatches recorre perezosamente los lotes del producto en orden FEFO (vencimiento ascendente,
// sin vencimiento al final). Cada página se consulta al avanzar; un error corta la secuencia.
func (l *BatchLedger) ListBatches(ctx context.Context, productID string, opts ListBatchesOptions) iter.Seq2[*entity.StockBatch, error] {
	return func(yield func(*entity.StockBatch, error) bool) {
		if productID == "" {
			yield(nil, domain.ErrInvalidInput)
			return
		}
		filter := repository.BatchFilter{
			UnitID:      opts.UnitID,
			IncludeZero: opts.IncludeZero,
			Limit:       listPageSize,
		}
		for {
			page, err := l.batchRepo.ListByProduct(ctx, productID, filter)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, b := range page {
				if !yield(b, nil) {
					return
				}
			}
			if len(page) < filter.Limit {
				return
			}
			filter.Offset += len(page)
		}
	}
}

// CollectBatches materializa ListBatches.
func (l *BatchLedger) CollectBatches(ctx context.Context, productID string, opts ListBatchesOptions) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for b, err := range l.ListBatches(ctx, productID, opts) {
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
