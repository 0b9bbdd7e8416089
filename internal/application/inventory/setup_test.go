package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func inDays(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, n)
	return &t
}

func testUnits() []entity.Unit {
	return []entity.Unit{
		{ID: "kg", Code: "kg", Name: "Kilogramo", ConversionFactor: d("1"), IsBaseUnit: true, GroupID: "masa"},
		{ID: "g", Code: "g", Name: "Gramo", ConversionFactor: d("0.001"), GroupID: "masa"},
		{ID: "l", Code: "l", Name: "Litro", ConversionFactor: d("1"), IsBaseUnit: true, GroupID: "volumen"},
		{ID: "ml", Code: "ml", Name: "Mililitro", ConversionFactor: d("0.001"), GroupID: "volumen"},
	}
}

// mapCache caché en memoria que cuenta invalidaciones.
type mapCache struct {
	mu      sync.Mutex
	items   map[string]entity.AggregateQuantity
	deletes int
}

func newMapCache() *mapCache { return &mapCache{items: map[string]entity.AggregateQuantity{}} }

func (c *mapCache) Get(_ context.Context, p, u string) (*entity.AggregateQuantity, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.items[p+"/"+u]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (c *mapCache) Set(_ context.Context, agg *entity.AggregateQuantity, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[agg.ProductID+"/"+agg.UnitID] = *agg
	return nil
}

func (c *mapCache) Delete(_ context.Context, p, u string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, p+"/"+u)
	c.deletes++
	return nil
}

type fixture struct {
	store     *memory.Store
	cache     *mapCache
	units     *inventory.UnitService
	projector *inventory.AggregateProjector
	ledger    *inventory.BatchLedger
	allocator *inventory.FefoAllocator
	recorder  *inventory.AdjustmentRecorder
	report    *inventory.ExpiryReport
}

func newFixture(t *testing.T, mutate ...func(*inventory.Settings)) *fixture {
	t.Helper()
	settings := inventory.DefaultSettings()
	settings.Now = func() time.Time { return fixedNow }
	for _, m := range mutate {
		m(&settings)
	}
	log := zerolog.Nop()
	store := memory.NewSeeded(testUnits())
	cache := newMapCache()

	units := inventory.NewUnitService(store, store.Units(), store.Batches(), store.Aggregates(), settings, log)
	projector := inventory.NewAggregateProjector(store, store.Aggregates(), cache, settings, log)
	ledger := inventory.NewBatchLedger(store, units, store.Batches(), projector, settings, log)
	allocator := inventory.NewFefoAllocator(store, units, projector, log)
	recorder := inventory.NewAdjustmentRecorder(store, allocator, store.Adjustments(), settings, log)
	return &fixture{
		store:     store,
		cache:     cache,
		units:     units,
		projector: projector,
		ledger:    ledger,
		allocator: allocator,
		recorder:  recorder,
		report:    inventory.NewExpiryReport(ledger, settings),
	}
}

func (f *fixture) receive(t *testing.T, number, qty string, expiry *time.Time) string {
	t.Helper()
	id, err := f.ledger.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		ProductID:   "P",
		UnitID:      "kg",
		BatchNumber: number,
		Quantity:    d(qty),
		ExpiryDate:  expiry,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) aggregate(t *testing.T, productID, unitID string) decimal.Decimal {
	t.Helper()
	agg, err := f.store.Aggregates().Get(context.Background(), productID, unitID)
	require.NoError(t, err)
	if agg == nil {
		return decimal.Zero
	}
	return agg.Quantity
}

func (f *fixture) batchQty(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.GetBatch(context.Background(), id)
	require.NoError(t, err)
	return b.Quantity
}

// seedThree B1 vence en 10 días, B2 en 20 y B3 en 30; 5 kg cada uno.
func (f *fixture) seedThree(t *testing.T) (b1, b2, b3 string) {
	t.Helper()
	return f.receive(t, "B1", "5", inDays(10)),
		f.receive(t, "B2", "5", inDays(20)),
		f.receive(t, "B3", "5", inDays(30))
}

func receiveIn(productID, unitID, number, qty string) inventory.ReceiveBatchInput {
	return inventory.ReceiveBatchInput{ProductID: productID, UnitID: unitID, BatchNumber: number, Quantity: d(qty)}
}
