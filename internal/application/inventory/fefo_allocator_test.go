package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

func deplete(f *fixture, qty string) (*entity.DepletionResult, error) {
	return f.allocator.Deplete(context.Background(), inventory.DepleteInput{
		ProductID: "P",
		UnitID:    "kg",
		Quantity:  d(qty),
		Reason:    entity.DepletionReasonSale,
		ActorID:   "u1",
	})
}

func TestDeplete_ConsumeEnOrdenFEFO(t *testing.T) {
	f := newFixture(t)
	b1, b2, b3 := f.seedThree(t)

	res, err := deplete(f, "12")
	require.NoError(t, err)

	assert.True(t, res.Consumed.Equal(d("12")))
	assert.True(t, res.Shortfall.IsZero())
	assert.False(t, res.HasShortfall())
	require.Len(t, res.ConsumedBatches, 3)
	assert.Equal(t, b1, res.ConsumedBatches[0].BatchID)
	assert.True(t, res.ConsumedBatches[0].Amount.Equal(d("5")))
	assert.Equal(t, b2, res.ConsumedBatches[1].BatchID)
	assert.True(t, res.ConsumedBatches[1].Amount.Equal(d("5")))
	assert.Equal(t, b3, res.ConsumedBatches[2].BatchID)
	assert.True(t, res.ConsumedBatches[2].Amount.Equal(d("2")))

	assert.True(t, f.batchQty(t, b1).IsZero())
	assert.True(t, f.batchQty(t, b2).IsZero())
	assert.True(t, f.batchQty(t, b3).Equal(d("3")))
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("3")))
}

func TestDeplete_LoteSinVencimientoAlFinal(t *testing.T) {
	f := newFixture(t)
	// Recibidos en orden inverso: el orden de consumo lo decide el vencimiento.
	b3 := f.receive(t, "B3", "5", nil)
	b2 := f.receive(t, "B2", "5", inDays(40))
	b1 := f.receive(t, "B1", "5", inDays(10))

	res, err := deplete(f, "12")
	require.NoError(t, err)

	assert.True(t, res.Shortfall.IsZero())
	require.Len(t, res.ConsumedBatches, 3)
	assert.Equal(t, []string{b1, b2, b3}, []string{
		res.ConsumedBatches[0].BatchID,
		res.ConsumedBatches[1].BatchID,
		res.ConsumedBatches[2].BatchID,
	})
	assert.True(t, res.ConsumedBatches[2].Amount.Equal(d("2")))
	assert.Nil(t, res.ConsumedBatches[2].ExpiryDate)
	assert.True(t, f.batchQty(t, b3).Equal(d("3")))
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("3")))
}

func TestDeplete_ConversionPeriodicaSeGuardaExacta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	saco, err := f.units.CreateUnit(ctx, inventory.CreateUnitInput{Code: "saco3", Name: "Saco de 3 kg", ConversionFactor: d("3"), GroupID: "masa"})
	require.NoError(t, err)
	id, err := f.ledger.ReceiveBatch(ctx, receiveIn("S", saco.ID, "S1", "5"))
	require.NoError(t, err)

	res, err := f.allocator.Deplete(ctx, inventory.DepleteInput{
		ProductID:      "S",
		UnitID:         saco.ID,
		Quantity:       d("1"),
		QuantityUnitID: "kg",
		Reason:         entity.DepletionReasonSale,
	})
	require.NoError(t, err)

	assert.True(t, res.Consumed.Equal(d("0.3333333333333333")), res.Consumed.String())
	require.Len(t, res.ConsumedBatches, 1)
	assert.True(t, res.ConsumedBatches[0].Amount.Equal(res.Consumed))

	left := f.batchQty(t, id)
	assert.True(t, left.Equal(d("4.6666666666666667")), left.String())
	assert.True(t, left.Add(res.Consumed).Equal(d("5")))
	assert.True(t, f.aggregate(t, "S", saco.ID).Equal(left))

	delta, err := f.projector.Reconcile(ctx, "S", saco.ID)
	require.NoError(t, err)
	assert.True(t, delta.IsZero())
}

func TestDeplete_FaltanteConsumeTodo(t *testing.T) {
	f := newFixture(t)
	b1, b2, b3 := f.seedThree(t)

	res, err := deplete(f, "20")
	require.NoError(t, err)

	assert.True(t, res.Consumed.Equal(d("15")))
	assert.True(t, res.Shortfall.Equal(d("5")))
	assert.True(t, res.HasShortfall())
	for _, id := range []string{b1, b2, b3} {
		assert.True(t, f.batchQty(t, id).IsZero(), id)
	}
	assert.True(t, f.aggregate(t, "P", "kg").IsZero())
}

func TestDeplete_SinAgregadoNoCreaFila(t *testing.T) {
	f := newFixture(t)

	res, err := deplete(f, "3")
	require.NoError(t, err)
	assert.True(t, res.Shortfall.Equal(d("3")))
	assert.Empty(t, res.ConsumedBatches)

	agg, err := f.store.Aggregates().Get(context.Background(), "P", "kg")
	require.NoError(t, err)
	assert.Nil(t, agg)
}

func TestDeplete_ConvierteCantidadDesdeOtraUnidad(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "2", inDays(5))

	res, err := f.allocator.Deplete(context.Background(), inventory.DepleteInput{
		ProductID:      "P",
		UnitID:         "kg",
		Quantity:       d("500"),
		QuantityUnitID: "g",
		Reason:         entity.DepletionReasonWaste,
	})
	require.NoError(t, err)
	assert.True(t, res.Consumed.Equal(d("0.5")))
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("1.5")))
}

func TestDeplete_UnidadIncompatible(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "2", inDays(5))

	_, err := f.allocator.Deplete(context.Background(), inventory.DepleteInput{
		ProductID:      "P",
		UnitID:         "kg",
		Quantity:       d("1"),
		QuantityUnitID: "ml",
		Reason:         entity.DepletionReasonSale,
	})
	assert.ErrorIs(t, err, domain.ErrIncompatibleUnits)
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("2")))
}

func TestDeplete_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   inventory.DepleteInput
		want error
	}{
		{"cantidad cero", inventory.DepleteInput{ProductID: "P", UnitID: "kg", Quantity: d("0"), Reason: "sale"}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.DepleteInput{ProductID: "P", UnitID: "kg", Quantity: d("-1"), Reason: "sale"}, domain.ErrInvalidQuantity},
		{"motivo desconocido", inventory.DepleteInput{ProductID: "P", UnitID: "kg", Quantity: d("1"), Reason: "regalo"}, domain.ErrInvalidInput},
		{"sin producto", inventory.DepleteInput{UnitID: "kg", Quantity: d("1"), Reason: "sale"}, domain.ErrInvalidInput},
		{"unidad inexistente", inventory.DepleteInput{ProductID: "P", UnitID: "caja", Quantity: d("1"), Reason: "sale"}, domain.ErrNotFound},
		{"más decimales que el libro", inventory.DepleteInput{ProductID: "P", UnitID: "kg", Quantity: d("0.00000000000000001"), Reason: "sale"}, domain.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.allocator.Deplete(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDeplete_CostoConsumido(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.ReceiveBatch(ctx, inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "C1", Quantity: d("2"), ExpiryDate: inDays(3), PurchasePrice: dp("10")})
	require.NoError(t, err)
	_, err = f.ledger.ReceiveBatch(ctx, inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "C2", Quantity: d("2"), ExpiryDate: inDays(6), PurchasePrice: dp("20")})
	require.NoError(t, err)

	res, err := deplete(f, "3")
	require.NoError(t, err)
	assert.True(t, res.ConsumedCost.Equal(d("40")), res.ConsumedCost.String())
}

func TestDeplete_InvalidaCache(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "5", inDays(10))
	ctx := context.Background()

	_, err := f.projector.Get(ctx, "P", "kg")
	require.NoError(t, err)
	before := f.cache.deletes

	_, err = deplete(f, "1")
	require.NoError(t, err)
	assert.Equal(t, before+1, f.cache.deletes)

	agg, err := f.projector.Get(ctx, "P", "kg")
	require.NoError(t, err)
	assert.True(t, agg.Quantity.Equal(d("4")))
}
