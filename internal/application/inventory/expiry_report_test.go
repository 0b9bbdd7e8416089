package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	dominv "github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

func TestExpiryReport_ClasificaYValora(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []inventory.ReceiveBatchInput{
		{ProductID: "P", UnitID: "kg", BatchNumber: "VENCIDO", Quantity: d("2"), ExpiryDate: inDays(-1), PurchasePrice: dp("10")},
		{ProductID: "P", UnitID: "kg", BatchNumber: "PRONTO", Quantity: d("3"), ExpiryDate: inDays(30), PurchasePrice: dp("20")},
		{ProductID: "P", UnitID: "kg", BatchNumber: "SANO", Quantity: d("5"), ExpiryDate: inDays(31), PurchasePrice: dp("4")},
		{ProductID: "P", UnitID: "kg", BatchNumber: "SIN", Quantity: d("1")},
	} {
		_, err := f.ledger.ReceiveBatch(ctx, in)
		require.NoError(t, err)
	}

	res, err := f.report.Build(ctx, "P", "kg")
	require.NoError(t, err)

	require.Len(t, res.Entries, 4)
	assert.Equal(t, "VENCIDO", res.Entries[0].Batch.BatchNumber)
	assert.Equal(t, dominv.ExpiryExpired, res.Entries[0].Status.Bucket)
	assert.Equal(t, dominv.ExpiryExpiringSoon, res.Entries[1].Status.Bucket)
	assert.Equal(t, 30, res.Entries[1].Status.DaysLeft)
	assert.Equal(t, dominv.ExpiryHealthy, res.Entries[2].Status.Bucket)
	assert.Equal(t, dominv.ExpiryNone, res.Entries[3].Status.Bucket)

	assert.Equal(t, map[string]int{
		dominv.ExpiryExpired:      1,
		dominv.ExpiryExpiringSoon: 1,
		dominv.ExpiryHealthy:      1,
		dominv.ExpiryNone:         1,
	}, res.Counts)
	assert.True(t, res.ValueAtRisk.Equal(d("80")), res.ValueAtRisk.String())
	assert.Equal(t, fixedNow, res.GeneratedAt)
	assert.False(t, res.AverageCost.IsZero())
}

func TestExpiryReport_OmiteLotesVacios(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "B1", "1", inDays(2))
	f.receive(t, "B2", "1", inDays(60))
	_, err := deplete(f, "1")
	require.NoError(t, err)

	res, err := f.report.Build(context.Background(), "P", "")
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "B2", res.Entries[0].Batch.BatchNumber)
	assert.Equal(t, 0, res.Counts[dominv.ExpiryExpiringSoon])
	assert.True(t, res.AverageCost.IsZero())
}

func TestExpiryReport_VentanaConfigurable(t *testing.T) {
	f := newFixture(t, func(s *inventory.Settings) { s.ExpiringSoonDays = 7 })
	f.receive(t, "B1", "1", inDays(10))

	res, err := f.report.Build(context.Background(), "P", "kg")
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, dominv.ExpiryHealthy, res.Entries[0].Status.Bucket)
}
