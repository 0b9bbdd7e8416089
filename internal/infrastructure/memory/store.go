// Package memory implementa los puertos de persistencia en memoria. Las transacciones toman el
// candado exclusivo del store, trabajan sobre una copia del estado y la publican en el commit.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type pairKey struct {
	productID string
	unitID    string
}

type state struct {
	units       map[string]entity.Unit
	batches     map[string]entity.StockBatch
	aggregates  map[pairKey]entity.AggregateQuantity
	adjustments []entity.StockAdjustment
}

func newState() *state {
	return &state{
		units:      make(map[string]entity.Unit),
		batches:    make(map[string]entity.StockBatch),
		aggregates: make(map[pairKey]entity.AggregateQuantity),
	}
}

// clone copia los mapas. Los punteros de fecha/precio de los lotes se comparten porque nunca se mutan.
func (s *state) clone() *state {
	c := &state{
		units:       make(map[string]entity.Unit, len(s.units)),
		batches:     make(map[string]entity.StockBatch, len(s.batches)),
		aggregates:  make(map[pairKey]entity.AggregateQuantity, len(s.aggregates)),
		adjustments: make([]entity.StockAdjustment, len(s.adjustments)),
	}
	for k, v := range s.units {
		c.units[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.aggregates {
		c.aggregates[k] = v
	}
	copy(c.adjustments, s.adjustments)
	return c
}

// Store almacén en memoria. Las lecturas fuera de transacción ven el último estado confirmado.
type Store struct {
	mu    sync.RWMutex
	state *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: newState()}
}

// NewSeeded crea un store con las unidades indicadas.
func NewSeeded(units []entity.Unit) *Store {
	s := New()
	for _, u := range units {
		s.state.units[u.ID] = u
	}
	return s
}

// Run serializa las transacciones: fn trabaja sobre una copia que se publica sólo si devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(r inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	h := handle{tx: work}
	if err := fn(inventory.TxRepos{
		Units:       &UnitRepo{h: h},
		Batches:     &BatchRepo{h: h},
		Aggregates:  &AggregateRepo{h: h},
		Adjustments: &AdjustmentRepo{h: h},
	}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Units repositorio de unidades fuera de transacción.
func (s *Store) Units() *UnitRepo { return &UnitRepo{h: handle{store: s}} }

// Batches repositorio de lotes fuera de transacción.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{h: handle{store: s}} }

// Aggregates repositorio de agregados fuera de transacción.
func (s *Store) Aggregates() *AggregateRepo { return &AggregateRepo{h: handle{store: s}} }

// Adjustments repositorio de ajustes fuera de transacción.
func (s *Store) Adjustments() *AdjustmentRepo { return &AdjustmentRepo{h: handle{store: s}} }

// handle da acceso al estado: el de la transacción en curso o el confirmado del store.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) read(fn func(st *state)) {
	if h.tx != nil {
		fn(h.tx)
		return
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	fn(h.store.state)
}

func (h handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	// Escritura suelta: se aplica sobre una copia para no dejar estados parciales si fn falla.
	work := h.store.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	h.store.state = work
	return nil
}
