package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

const (
	defaultAdjustmentPage = 50
	maxAdjustmentPage     = 500
)

// AdjustmentRecorder registra ajustes de inventario (conteo físico, merma, robo, devolución...)
// como entradas inmutables con cantidad antes/después y el actor que las hizo.
type AdjustmentRecorder struct {
	txRunner  TxRunner
	allocator *FefoAllocator
	adjRepo   repository.AdjustmentRepository
	settings  Settings
	log       zerolog.Logger
}

// NewAdjustmentRecorder construye el registrador de ajustes.
func NewAdjustmentRecorder(
	txRunner TxRunner,
	allocator *FefoAllocator,
	adjRepo repository.AdjustmentRepository,
	settings Settings,
	log zerolog.Logger,
) *AdjustmentRecorder {
	return &AdjustmentRecorder{
		txRunner:  txRunner,
		allocator: allocator,
		adjRepo:   adjRepo,
		settings:  settings,
		log:       log,
	}
}

// AdjustInput nueva cantidad absoluta del par y motivo del ajuste.
type AdjustInput struct {
	ProductID   string
	UnitID      string
	NewQuantity decimal.Decimal
	Reason      string
	Description string
	ActorID     string
}

// Adjust lleva el agregado del par a NewQuantity:
//   - delta < 0: consume |delta| de los lotes en orden FEFO dentro de la misma transacción.
//   - delta > 0: se rechaza con ErrUnattributedIncrease; el aumento debe entrar como lote (ReceiveBatch).
//   - delta = 0: se registra igualmente (confirmación de conteo).
//
// Siempre escribe exactamente un StockAdjustment.
func (a *AdjustmentRecorder) Adjust(ctx context.Context, in AdjustInput) (string, error) {
	if in.ProductID == "" || in.UnitID == "" || in.ActorID == "" {
		return "", domain.ErrInvalidInput
	}
	if in.NewQuantity.IsNegative() || !inventory.FitsQuantityScale(in.NewQuantity) {
		return "", domain.ErrInvalidQuantity
	}
	if !entity.ValidAdjustmentReason(in.Reason) {
		return "", domain.ErrInvalidInput
	}
	g, err := a.allocator.units.Graph(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := g.Unit(in.UnitID); !ok {
		return "", domain.ErrNotFound
	}

	adj := &entity.StockAdjustment{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		UnitID:      in.UnitID,
		Reason:      in.Reason,
		Description: in.Description,
		ActorID:     in.ActorID,
		CreatedAt:   a.settings.now(),
	}
	var depleted *entity.DepletionResult

	err = a.txRunner.Run(ctx, func(r TxRepos) error {
		agg, err := r.Aggregates.GetForUpdate(ctx, in.ProductID, in.UnitID)
		if err != nil {
			return err
		}
		before := decimal.Zero
		if agg != nil {
			before = agg.Quantity
		}
		delta := in.NewQuantity.Sub(before)
		if delta.IsPositive() {
			return domain.ErrUnattributedIncrease
		}
		if delta.IsNegative() {
			res, err := a.allocator.depleteInTx(ctx, r, in.ProductID, in.UnitID, delta.Neg())
			if err != nil {
				return err
			}
			if res.HasShortfall() {
				return fmt.Errorf("%w: faltan %s en lotes para %s/%s", domain.ErrAggregateDrift, res.Shortfall, in.ProductID, in.UnitID)
			}
			depleted = res
		}
		adj.BeforeQuantity = before
		adj.AfterQuantity = in.NewQuantity
		return r.Adjustments.Create(ctx, adj)
	})
	if err != nil {
		return "", err
	}

	batches := 0
	if depleted != nil {
		batches = len(depleted.ConsumedBatches)
		a.allocator.projector.invalidate(ctx, in.ProductID, in.UnitID)
	}
	a.log.Info().
		Str("adjustment_id", adj.ID).
		Str("product_id", adj.ProductID).
		Str("unit_id", adj.UnitID).
		Str("reason", adj.Reason).
		Str("actor_id", adj.ActorID).
		Str("before", adj.BeforeQuantity.String()).
		Str("after", adj.AfterQuantity.String()).
		Int("batches", batches).
		Msg("ajuste registrado")
	return adj.ID, nil
}

// ListAdjustments historial del par, del más reciente al más antiguo.
func (a *AdjustmentRecorder) ListAdjustments(ctx context.Context, productID, unitID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	if productID == "" || unitID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultAdjustmentPage
	}
	if limit > maxAdjustmentPage {
		limit = maxAdjustmentPage
	}
	if offset < 0 {
		offset = 0
	}
	return a.adjRepo.ListByProductUnit(ctx, productID, unitID, limit, offset)
}
