package inventory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// FefoAllocator descuenta existencias de los lotes de un (producto, unidad) en orden FEFO.
type FefoAllocator struct {
	txRunner  TxRunner
	units     *UnitService
	projector *AggregateProjector
	log       zerolog.Logger
}

// NewFefoAllocator construye el asignador FEFO.
func NewFefoAllocator(txRunner TxRunner, units *UnitService, projector *AggregateProjector, log zerolog.Logger) *FefoAllocator {
	return &FefoAllocator{
		txRunner:  txRunner,
		units:     units,
		projector: projector,
		log:       log,
	}
}

// DepleteInput solicitud de consumo. Quantity se expresa en QuantityUnitID si viene informado
// (se convierte a UnitID con el grafo de unidades); si no, en UnitID.
type DepleteInput struct {
	ProductID      string
	UnitID         string
	Quantity       decimal.Decimal
	QuantityUnitID string
	Reason         string
	ActorID        string
}

// Deplete consume hasta Quantity de los lotes del par en una transacción. Si no alcanza, consume
// todo lo disponible y devuelve el faltante en Shortfall sin error: el llamador decide si es fatal.
func (f *FefoAllocator) Deplete(ctx context.Context, in DepleteInput) (*entity.DepletionResult, error) {
	if in.ProductID == "" || in.UnitID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) || !inventory.FitsQuantityScale(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if !entity.ValidDepletionReason(in.Reason) {
		return nil, domain.ErrInvalidInput
	}
	g, err := f.units.Graph(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Unit(in.UnitID); !ok {
		return nil, domain.ErrNotFound
	}
	quantity := in.Quantity
	if in.QuantityUnitID != "" && in.QuantityUnitID != in.UnitID {
		if quantity, err = g.Convert(in.Quantity, in.QuantityUnitID, in.UnitID); err != nil {
			return nil, err
		}
	}

	var result *entity.DepletionResult
	err = f.txRunner.Run(ctx, func(r TxRepos) error {
		res, err := f.depleteInTx(ctx, r, in.ProductID, in.UnitID, quantity)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Consumed.IsZero() {
		f.projector.invalidate(ctx, in.ProductID, in.UnitID)
	}

	ev := f.log.Info()
	if result.HasShortfall() {
		ev = f.log.Warn()
	}
	ev.Str("product_id", in.ProductID).
		Str("unit_id", in.UnitID).
		Str("reason", in.Reason).
		Str("actor_id", in.ActorID).
		Str("requested", result.Requested.String()).
		Str("consumed", result.Consumed.String()).
		Str("shortfall", result.Shortfall.String()).
		Int("batches", len(result.ConsumedBatches)).
		Msg("consumo FEFO")
	return result, nil
}

// depleteInTx ejecuta el consumo con los repositorios de una transacción abierta por el llamador.
// Orden de bloqueo: fila de agregado, luego lotes. Sin fila de agregado no hay lotes que consumir.
func (f *FefoAllocator) depleteInTx(ctx context.Context, r TxRepos, productID, unitID string, quantity decimal.Decimal) (*entity.DepletionResult, error) {
	result := &entity.DepletionResult{
		ProductID:    productID,
		UnitID:       unitID,
		Requested:    quantity,
		Consumed:     decimal.Zero,
		Shortfall:    quantity,
		ConsumedCost: decimal.Zero,
	}
	agg, err := r.Aggregates.GetForUpdate(ctx, productID, unitID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return result, nil
	}
	batches, err := r.Batches.ListAvailableForUpdate(ctx, productID, unitID)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(batches)

	plan, shortfall := inventory.PlanDepletion(batches, quantity)
	for _, a := range plan {
		taken := a.Batch.Deduct(a.Amount)
		if err := r.Batches.UpdateQuantity(ctx, a.Batch.ID, a.Batch.Quantity); err != nil {
			return nil, err
		}
		result.Consumed = result.Consumed.Add(taken)
		result.ConsumedBatches = append(result.ConsumedBatches, entity.ConsumedBatch{
			BatchID:       a.Batch.ID,
			BatchNumber:   a.Batch.BatchNumber,
			ExpiryDate:    a.Batch.ExpiryDate,
			Amount:        taken,
			PurchasePrice: a.Batch.PurchasePrice,
		})
	}
	result.Shortfall = shortfall
	result.ConsumedCost = inventory.ConsumedCost(result.ConsumedBatches)

	if err := f.projector.apply(ctx, r, agg, result.Consumed.Neg()); err != nil {
		return nil, err
	}
	return result, nil
}
