package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// UnitService expone el grafo de unidades: conversión, unidades por producto y alta/baja de unidades.
type UnitService struct {
	txRunner  TxRunner
	unitRepo  repository.UnitRepository
	batchRepo repository.BatchRepository
	aggRepo   repository.AggregateRepository
	settings  Settings
	log       zerolog.Logger
}

// NewUnitService construye el servicio de unidades.
func NewUnitService(
	txRunner TxRunner,
	unitRepo repository.UnitRepository,
	batchRepo repository.BatchRepository,
	aggRepo repository.AggregateRepository,
	settings Settings,
	log zerolog.Logger,
) *UnitService {
	return &UnitService{
		txRunner:  txRunner,
		unitRepo:  unitRepo,
		batchRepo: batchRepo,
		aggRepo:   aggRepo,
		settings:  settings,
		log:       log,
	}
}

// CreateUnitInput datos para registrar una unidad.
type CreateUnitInput struct {
	Code             string
	Name             string
	ConversionFactor decimal.Decimal
	IsBaseUnit       bool
	GroupID          string
}

// Graph construye el grafo a partir de las unidades configuradas.
func (s *UnitService) Graph(ctx context.Context) (*inventory.UnitGraph, error) {
	units, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.NewUnitGraph(units)
}

// Convert convierte quantity entre dos unidades del mismo grupo.
func (s *UnitService) Convert(ctx context.Context, quantity decimal.Decimal, fromUnitID, toUnitID string) (decimal.Decimal, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return g.Convert(quantity, fromUnitID, toUnitID)
}

// ListUnits todas las unidades ordenadas por grupo y código.
func (s *UnitService) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return g.Units(), nil
}

// ListUnitsForProduct unidades en las que el producto tiene lotes o fila de agregado.
// Si no hay ninguna se devuelven todas las unidades configuradas.
func (s *UnitService) ListUnitsForProduct(ctx context.Context, productID string) ([]entity.Unit, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	fromBatches, err := s.batchRepo.UnitIDsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	fromAggregates, err := s.aggRepo.UnitIDsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(fromBatches)+len(fromAggregates))
	for _, id := range append(fromBatches, fromAggregates...) {
		ids[id] = struct{}{}
	}
	units := g.Subset(ids)
	if len(units) == 0 {
		return g.Units(), nil
	}
	return units, nil
}

// CreateUnit valida el grafo resultante completo antes de persistir la unidad.
func (s *UnitService) CreateUnit(ctx context.Context, in CreateUnitInput) (*entity.Unit, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.GroupID = strings.TrimSpace(in.GroupID)
	if in.Code == "" || in.GroupID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Name == "" {
		in.Name = in.Code
	}
	unit := &entity.Unit{
		ID:               uuid.New().String(),
		Code:             in.Code,
		Name:             in.Name,
		ConversionFactor: in.ConversionFactor,
		IsBaseUnit:       in.IsBaseUnit,
		GroupID:          in.GroupID,
		CreatedAt:        s.settings.now(),
	}
	err := s.txRunner.Run(ctx, func(r TxRepos) error {
		units, err := r.Units.List(ctx)
		if err != nil {
			return err
		}
		if _, err := inventory.NewUnitGraph(append(units, *unit)); err != nil {
			return err
		}
		return r.Units.Create(ctx, unit)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("unit_id", unit.ID).Str("code", unit.Code).Str("group_id", unit.GroupID).Msg("unidad creada")
	return unit, nil
}

// DeleteUnit elimina una unidad sin referencias. La base de un grupo sólo se puede borrar
// cuando es la última unidad del grupo.
func (s *UnitService) DeleteUnit(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	err := s.txRunner.Run(ctx, func(r TxRepos) error {
		unit, err := r.Units.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.ErrNotFound
		}
		used, err := r.Units.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return domain.ErrUnitInUse
		}
		units, err := r.Units.List(ctx)
		if err != nil {
			return err
		}
		rest := make([]entity.Unit, 0, len(units))
		for _, u := range units {
			if u.ID != id {
				rest = append(rest, u)
			}
		}
		if _, err := inventory.NewUnitGraph(rest); err != nil {
			return err
		}
		return r.Units.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("eliminar unidad %s: %w", id, err)
	}
	s.log.Info().Str("unit_id", id).Msg("unidad eliminada")
	return nil
}
