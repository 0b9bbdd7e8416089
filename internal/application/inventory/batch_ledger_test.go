package inventory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
)

func TestReceiveBatch_IncrementaAgregado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "5", inDays(10))
	f.receive(t, "B2", "2.5", nil)

	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("7.5")))

	agg, err := f.projector.Get(context.Background(), "P", "kg")
	require.NoError(t, err)
	assert.True(t, agg.AlertEnabled)
	assert.True(t, agg.LowQuantityThreshold.IsZero())
}

func TestReceiveBatch_NumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "5", inDays(10))

	_, err := f.ledger.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		ProductID: "P", UnitID: "kg", BatchNumber: " B1 ", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateBatch)
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("5")))
}

func TestReceiveBatch_MismoNumeroEnOtraUnidadEsDuplicado(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "5", nil)

	_, err := f.ledger.ReceiveBatch(context.Background(), inventory.ReceiveBatchInput{
		ProductID: "P", UnitID: "g", BatchNumber: "B1", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateBatch)
}

func TestReceiveBatch_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   inventory.ReceiveBatchInput
		want error
	}{
		{"cantidad cero", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "X", Quantity: d("0")}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "X", Quantity: d("-2")}, domain.ErrInvalidQuantity},
		{"más decimales que el libro", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "X", Quantity: d("1.00000000000000001")}, domain.ErrInvalidQuantity},
		{"sin número", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "  ", Quantity: d("1")}, domain.ErrInvalidInput},
		{"precio negativo", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "kg", BatchNumber: "X", Quantity: d("1"), PurchasePrice: dp("-1")}, domain.ErrInvalidInput},
		{"unidad inexistente", inventory.ReceiveBatchInput{ProductID: "P", UnitID: "caja", BatchNumber: "X", Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.ReceiveBatch(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.True(t, f.aggregate(t, "P", "kg").IsZero())
}

func TestDeleteBatch_RecibirYEliminarDejaAgregadoEnCero(t *testing.T) {
	f := newFixture(t)
	id := f.receive(t, "B1", "5", inDays(10))

	require.NoError(t, f.ledger.DeleteBatch(context.Background(), id))

	assert.True(t, f.aggregate(t, "P", "kg").IsZero())
	_, err := f.ledger.GetBatch(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBatch_ModoEstricto(t *testing.T) {
	f := newFixture(t, func(s *inventory.Settings) { s.StrictBatchDeletion = true })
	ctx := context.Background()
	id := f.receive(t, "B1", "5", inDays(10))

	assert.ErrorIs(t, f.ledger.DeleteBatch(ctx, id), domain.ErrNonZeroBatchDeletion)
	assert.True(t, f.aggregate(t, "P", "kg").Equal(d("5")))

	_, err := deplete(f, "5")
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteBatch(ctx, id))
	assert.True(t, f.aggregate(t, "P", "kg").IsZero())
}

func TestDeleteBatch_Inexistente(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ledger.DeleteBatch(context.Background(), "nope"), domain.ErrNotFound)
}

func TestListBatches_OrdenFEFOYFiltroDeVacios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sin := f.receive(t, "SIN", "1", nil)
	tarde := f.receive(t, "TARDE", "1", inDays(40))
	pronto := f.receive(t, "PRONTO", "1", inDays(3))

	live, err := f.ledger.CollectBatches(ctx, "P", inventory.ListBatchesOptions{})
	require.NoError(t, err)
	require.Len(t, live, 3)
	assert.Equal(t, []string{pronto, tarde, sin}, []string{live[0].ID, live[1].ID, live[2].ID})

	_, err = deplete(f, "1")
	require.NoError(t, err)

	live, err = f.ledger.CollectBatches(ctx, "P", inventory.ListBatchesOptions{})
	require.NoError(t, err)
	assert.Len(t, live, 2)

	all, err := f.ledger.CollectBatches(ctx, "P", inventory.ListBatchesOptions{IncludeZero: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListBatches_RecorreVariasPaginas(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 230; i++ {
		f.receive(t, fmt.Sprintf("L%03d", i), "1", inDays(i+1))
	}
	n := 0
	for b, err := range f.ledger.ListBatches(context.Background(), "P", inventory.ListBatchesOptions{}) {
		require.NoError(t, err)
		require.NotNil(t, b)
		n++
	}
	assert.Equal(t, 230, n)
}

func TestListBatches_CorteTemprano(t *testing.T) {
	f := newFixture(t)
	f.seedThree(t)
	n := 0
	for range f.ledger.ListBatches(context.Background(), "P", inventory.ListBatchesOptions{}) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
