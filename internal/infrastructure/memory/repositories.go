package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var (
	_ repository.UnitRepository       = (*UnitRepo)(nil)
	_ repository.BatchRepository      = (*BatchRepo)(nil)
	_ repository.AggregateRepository  = (*AggregateRepo)(nil)
	_ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)
)

// UnitRepo unidades en memoria.
type UnitRepo struct{ h handle }

func (r *UnitRepo) List(_ context.Context) ([]entity.Unit, error) {
	var out []entity.Unit
	r.h.read(func(st *state) {
		out = make([]entity.Unit, 0, len(st.units))
		for _, u := range st.units {
			out = append(out, u)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UnitRepo) GetByID(_ context.Context, id string) (*entity.Unit, error) {
	var out *entity.Unit
	r.h.read(func(st *state) {
		if u, ok := st.units[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UnitRepo) Create(_ context.Context, unit *entity.Unit) error {
	return r.h.write(func(st *state) error {
		if _, dup := st.units[unit.ID]; dup {
			return domain.ErrInvalidUnitGroup
		}
		code := inventory.NormalizeUnitCode(unit.Code)
		for _, u := range st.units {
			if inventory.NormalizeUnitCode(u.Code) == code {
				return domain.ErrInvalidUnitGroup
			}
		}
		st.units[unit.ID] = *unit
		return nil
	})
}

func (r *UnitRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.units[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.units, id)
		return nil
	})
}

func (r *UnitRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	used := false
	r.h.read(func(st *state) {
		for _, b := range st.batches {
			if b.UnitID == id {
				used = true
				return
			}
		}
		for k := range st.aggregates {
			if k.unitID == id {
				used = true
				return
			}
		}
		for _, a := range st.adjustments {
			if a.UnitID == id {
				used = true
				return
			}
		}
	})
	return used, nil
}

// BatchRepo lotes en memoria.
type BatchRepo struct{ h handle }

func (r *BatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.units[batch.UnitID]; !ok {
			return domain.ErrNotFound
		}
		for _, b := range st.batches {
			if b.ProductID == batch.ProductID && b.BatchNumber == batch.BatchNumber {
				return domain.ErrDuplicateBatch
			}
		}
		st.batches[batch.ID] = *batch
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.StockBatch, error) {
	var out *entity.StockBatch
	r.h.read(func(st *state) {
		if b, ok := st.batches[id]; ok {
			out = &b
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el candado exclusivo.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *BatchRepo) ExistsBatchNumber(_ context.Context, productID, batchNumber string) (bool, error) {
	exists := false
	r.h.read(func(st *state) {
		for _, b := range st.batches {
			if b.ProductID == productID && b.BatchNumber == batchNumber {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r *BatchRepo) collect(match func(b entity.StockBatch) bool) []*entity.StockBatch {
	var out []*entity.StockBatch
	r.h.read(func(st *state) {
		for _, b := range st.batches {
			if match(b) {
				b := b
				out = append(out, &b)
			}
		}
	})
	inventory.SortFEFO(out)
	return out
}

func (r *BatchRepo) ListByProduct(_ context.Context, productID string, filter repository.BatchFilter) ([]*entity.StockBatch, error) {
	all := r.collect(func(b entity.StockBatch) bool {
		if b.ProductID != productID {
			return false
		}
		if filter.UnitID != "" && b.UnitID != filter.UnitID {
			return false
		}
		return filter.IncludeZero || b.HasStock()
	})
	if filter.Offset >= len(all) {
		return nil, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (r *BatchRepo) ListAvailableForUpdate(_ context.Context, productID, unitID string) ([]*entity.StockBatch, error) {
	return r.collect(func(b entity.StockBatch) bool {
		return b.ProductID == productID && b.UnitID == unitID && b.HasStock()
	}), nil
}

func (r *BatchRepo) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	return r.h.write(func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return domain.ErrNotFound
		}
		if quantity.IsNegative() {
			return domain.ErrInvalidQuantity
		}
		b.Quantity = quantity
		st.batches[id] = b
		return nil
	})
}

func (r *BatchRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.batches[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.batches, id)
		return nil
	})
}

func (r *BatchRepo) SumLive(_ context.Context, productID, unitID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.h.read(func(st *state) {
		for _, b := range st.batches {
			if b.ProductID == productID && b.UnitID == unitID {
				sum = sum.Add(b.Quantity)
			}
		}
	})
	return sum, nil
}

func (r *BatchRepo) UnitIDsByProduct(_ context.Context, productID string) ([]string, error) {
	seen := make(map[string]struct{})
	r.h.read(func(st *state) {
		for _, b := range st.batches {
			if b.ProductID == productID {
				seen[b.UnitID] = struct{}{}
			}
		}
	})
	return sortedKeys(seen), nil
}

// AggregateRepo agregados en memoria.
type AggregateRepo struct{ h handle }

func (r *AggregateRepo) Get(_ context.Context, productID, unitID string) (*entity.AggregateQuantity, error) {
	var out *entity.AggregateQuantity
	r.h.read(func(st *state) {
		if a, ok := st.aggregates[pairKey{productID, unitID}]; ok {
			out = &a
		}
	})
	return out, nil
}

func (r *AggregateRepo) GetForUpdate(ctx context.Context, productID, unitID string) (*entity.AggregateQuantity, error) {
	return r.Get(ctx, productID, unitID)
}

func (r *AggregateRepo) LockOrCreate(_ context.Context, defaults *entity.AggregateQuantity) (*entity.AggregateQuantity, error) {
	var out entity.AggregateQuantity
	err := r.h.write(func(st *state) error {
		key := pairKey{defaults.ProductID, defaults.UnitID}
		a, ok := st.aggregates[key]
		if !ok {
			if _, known := st.units[defaults.UnitID]; !known {
				return domain.ErrNotFound
			}
			a = *defaults
			a.UpdatedAt = time.Now()
			st.aggregates[key] = a
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *AggregateRepo) SetQuantity(_ context.Context, productID, unitID string, quantity decimal.Decimal) error {
	return r.h.write(func(st *state) error {
		key := pairKey{productID, unitID}
		a, ok := st.aggregates[key]
		if !ok {
			return domain.ErrNotFound
		}
		a.Quantity = quantity
		a.UpdatedAt = time.Now()
		st.aggregates[key] = a
		return nil
	})
}

func (r *AggregateRepo) SetThreshold(_ context.Context, productID, unitID string, threshold decimal.Decimal, alertEnabled bool) error {
	return r.h.write(func(st *state) error {
		key := pairKey{productID, unitID}
		a, ok := st.aggregates[key]
		if !ok {
			return domain.ErrNotFound
		}
		a.LowQuantityThreshold = threshold
		a.AlertEnabled = alertEnabled
		a.UpdatedAt = time.Now()
		st.aggregates[key] = a
		return nil
	})
}

func (r *AggregateRepo) list(match func(a entity.AggregateQuantity) bool) []*entity.AggregateQuantity {
	var out []*entity.AggregateQuantity
	r.h.read(func(st *state) {
		for _, a := range st.aggregates {
			if match(a) {
				a := a
				out = append(out, &a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].UnitID < out[j].UnitID
	})
	return out
}

func (r *AggregateRepo) List(_ context.Context) ([]*entity.AggregateQuantity, error) {
	return r.list(func(entity.AggregateQuantity) bool { return true }), nil
}

func (r *AggregateRepo) ListLowStock(_ context.Context) ([]*entity.AggregateQuantity, error) {
	return r.list(func(a entity.AggregateQuantity) bool { return a.IsLow() }), nil
}

func (r *AggregateRepo) UnitIDsByProduct(_ context.Context, productID string) ([]string, error) {
	seen := make(map[string]struct{})
	r.h.read(func(st *state) {
		for k := range st.aggregates {
			if k.productID == productID {
				seen[k.unitID] = struct{}{}
			}
		}
	})
	return sortedKeys(seen), nil
}

// AdjustmentRepo libro de ajustes en memoria (sólo inserción).
type AdjustmentRepo struct{ h handle }

func (r *AdjustmentRepo) Create(_ context.Context, adjustment *entity.StockAdjustment) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.units[adjustment.UnitID]; !ok {
			return domain.ErrNotFound
		}
		st.adjustments = append(st.adjustments, *adjustment)
		return nil
	})
}

func (r *AdjustmentRepo) ListByProductUnit(_ context.Context, productID, unitID string, limit, offset int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	r.h.read(func(st *state) {
		// Recorrido inverso: el más reciente primero.
		for i := len(st.adjustments) - 1; i >= 0; i-- {
			a := st.adjustments[i]
			if a.ProductID == productID && a.UnitID == unitID {
				out = append(out, &a)
			}
		}
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
