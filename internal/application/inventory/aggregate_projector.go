package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// AggregateProjector mantiene la fila AggregateQuantity de cada (producto, unidad).
// El libro de lotes es la fuente de verdad; el agregado se actualiza en la misma transacción
// que la mutación del lote y Reconcile corrige cualquier desvío.
type AggregateProjector struct {
	txRunner TxRunner
	aggRepo  repository.AggregateRepository
	cache    AggregateCache
	settings Settings
	log      zerolog.Logger
}

// NewAggregateProjector construye el proyector. cache puede ser nil.
func NewAggregateProjector(
	txRunner TxRunner,
	aggRepo repository.AggregateRepository,
	cache AggregateCache,
	settings Settings,
	log zerolog.Logger,
) *AggregateProjector {
	return &AggregateProjector{
		txRunner: txRunner,
		aggRepo:  aggRepo,
		cache:    cache,
		settings: settings,
		log:      log,
	}
}

// ReconcileResult desvío corregido para un par.
type ReconcileResult struct {
	ProductID string
	UnitID    string
	Delta     decimal.Decimal
}

// lockOrCreate bloquea la fila del par, creándola con los valores por defecto si falta.
func (p *AggregateProjector) lockOrCreate(ctx context.Context, r TxRepos, productID, unitID string) (*entity.AggregateQuantity, error) {
	return r.Aggregates.LockOrCreate(ctx, &entity.AggregateQuantity{
		ProductID:            productID,
		UnitID:               unitID,
		Quantity:             decimal.Zero,
		LowQuantityThreshold: p.settings.DefaultLowStockThreshold,
		AlertEnabled:         p.settings.DefaultAlertEnabled,
	})
}

// apply suma delta al agregado ya bloqueado y persiste el nuevo valor.
func (p *AggregateProjector) apply(ctx context.Context, r TxRepos, agg *entity.AggregateQuantity, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	next := agg.Quantity.Add(delta)
	if next.IsNegative() {
		p.log.Warn().
			Str("product_id", agg.ProductID).
			Str("unit_id", agg.UnitID).
			Str("quantity", agg.Quantity.String()).
			Str("delta", delta.String()).
			Msg("agregado negativo: revisar con reconcile")
	}
	if err := r.Aggregates.SetQuantity(ctx, agg.ProductID, agg.UnitID, next); err != nil {
		return err
	}
	agg.Quantity = next
	return nil
}

// invalidate descarta la entrada de caché tras un commit. Un fallo de caché no revierte la operación.
func (p *AggregateProjector) invalidate(ctx context.Context, productID, unitID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, productID, unitID); err != nil {
		p.log.Warn().Err(err).Str("product_id", productID).Str("unit_id", unitID).Msg("invalidar caché de agregado")
	}
}

// Get lee el agregado del par a través de la caché.
func (p *AggregateProjector) Get(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error) {
	if productID == "" || unitID == "" {
		return nil, domain.ErrInvalidInput
	}
	if p.cache != nil {
		if agg, ok, err := p.cache.Get(ctx, productID, unitID); err == nil && ok {
			return agg, nil
		} else if err != nil {
			p.log.Debug().Err(err).Msg("lectura de caché de agregado")
		}
	}
	agg, err := p.aggRepo.Get(ctx, productID, unitID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, domain.ErrNotFound
	}
	if p.cache != nil {
		p.fill(ctx, agg)
	}
	return agg, nil
}

// fill guarda agg en caché y relee la fila: si un commit la cambió entre la lectura y el Set,
// su invalidación pudo llegar antes que el Set, así que la entrada se descarta.
func (p *AggregateProjector) fill(ctx context.Context, agg *entity.AggregateQuantity) {
	if err := p.cache.Set(ctx, agg, p.settings.AggregateCacheTTL); err != nil {
		p.log.Debug().Err(err).Msg("escritura de caché de agregado")
		return
	}
	current, err := p.aggRepo.Get(ctx, agg.ProductID, agg.UnitID)
	if err == nil && current != nil && sameAggregate(agg, current) {
		return
	}
	p.invalidate(ctx, agg.ProductID, agg.UnitID)
}

func sameAggregate(a, b *entity.AggregateQuantity) bool {
	return a.Quantity.Equal(b.Quantity) &&
		a.LowQuantityThreshold.Equal(b.LowQuantityThreshold) &&
		a.AlertEnabled == b.AlertEnabled &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

// Reconcile recalcula el agregado sumando los lotes vivos bajo bloqueo y corrige el desvío.
// Devuelve verdad - almacenado (cero si no había desvío).
func (p *AggregateProjector) Reconcile(ctx context.Context, productID, unitID string) (decimal.Decimal, error) {
	if productID == "" || unitID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	delta := decimal.Zero
	err := p.txRunner.Run(ctx, func(r TxRepos) error {
		agg, err := r.Aggregates.GetForUpdate(ctx, productID, unitID)
		if err != nil {
			return err
		}
		truth, err := r.Batches.SumLive(ctx, productID, unitID)
		if err != nil {
			return err
		}
		if agg == nil {
			if truth.IsZero() {
				return nil
			}
			if agg, err = p.lockOrCreate(ctx, r, productID, unitID); err != nil {
				return err
			}
		}
		delta = truth.Sub(agg.Quantity)
		if delta.IsZero() {
			return nil
		}
		return r.Aggregates.SetQuantity(ctx, productID, unitID, truth)
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("reconcile %s/%s: %w", productID, unitID, err)
	}
	if !delta.IsZero() {
		p.invalidate(ctx, productID, unitID)
		p.log.Warn().
			Str("product_id", productID).
			Str("unit_id", unitID).
			Str("delta", delta.String()).
			Msg("agregado corregido por reconcile")
	}
	return delta, nil
}

// ReconcileAll ejecuta Reconcile sobre todas las filas de agregado y devuelve los pares corregidos.
func (p *AggregateProjector) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	rows, err := p.aggRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var fixed []ReconcileResult
	for _, row := range rows {
		delta, err := p.Reconcile(ctx, row.ProductID, row.UnitID)
		if err != nil {
			return fixed, err
		}
		if !delta.IsZero() {
			fixed = append(fixed, ReconcileResult{ProductID: row.ProductID, UnitID: row.UnitID, Delta: delta})
		}
	}
	return fixed, nil
}

// SetThreshold configura el umbral de stock bajo y la alerta del par.
func (p *AggregateProjector) SetThreshold(ctx context.Context, productID, unitID string, threshold decimal.Decimal, alertEnabled bool) error {
	if productID == "" || unitID == "" {
		return domain.ErrInvalidInput
	}
	if threshold.IsNegative() || !inventory.FitsQuantityScale(threshold) {
		return domain.ErrInvalidQuantity
	}
	err := p.txRunner.Run(ctx, func(r TxRepos) error {
		if _, err := p.lockOrCreate(ctx, r, productID, unitID); err != nil {
			return err
		}
		return r.Aggregates.SetThreshold(ctx, productID, unitID, threshold, alertEnabled)
	})
	if err != nil {
		return err
	}
	p.invalidate(ctx, productID, unitID)
	return nil
}

// ListLowStock agregados con alerta activa cuya cantidad no supera el umbral.
func (p *AggregateProjector) ListLowStock(ctx context.Context) ([]*entity.AggregateQuantity, error) {
	return p.aggRepo.ListLowStock(ctx)
}
