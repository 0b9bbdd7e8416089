package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// ExpiryReport clasifica por frescura los lotes vivos de un producto (alertas y ordenamiento).
type ExpiryReport struct {
	ledger   *BatchLedger
	settings Settings
}

// NewExpiryReport construye el reporte sobre el libro de lotes.
func NewExpiryReport(ledger *BatchLedger, settings Settings) *ExpiryReport {
	return &ExpiryReport{ledger: ledger, settings: settings}
}

// ExpiryEntry lote con su clasificación y valor a precio de compra.
type ExpiryEntry struct {
	Batch  *entity.StockBatch
	Status inventory.ExpiryStatus
	Value  decimal.Decimal
}

// ExpiryReportResult entradas en orden FEFO y totales por categoría.
type ExpiryReportResult struct {
	ProductID   string
	GeneratedAt time.Time
	Entries     []ExpiryEntry
	Counts      map[string]int
	// ValueAtRisk valor de lo vencido o próximo a vencer.
	ValueAtRisk decimal.Decimal
	// AverageCost sólo se calcula cuando el reporte se limita a una unidad.
	AverageCost decimal.Decimal
}

// Build genera el reporte. unitID vacío incluye todas las unidades del producto.
func (e *ExpiryReport) Build(ctx context.Context, productID, unitID string) (*ExpiryReportResult, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	window := e.settings.ExpiringSoonDays
	if window <= 0 {
		window = inventory.DefaultExpiringSoonDays
	}
	now := e.settings.now()
	res := &ExpiryReportResult{
		ProductID:   productID,
		GeneratedAt: now,
		Counts: map[string]int{
			inventory.ExpiryExpired:      0,
			inventory.ExpiryExpiringSoon: 0,
			inventory.ExpiryHealthy:      0,
			inventory.ExpiryNone:         0,
		},
		ValueAtRisk: decimal.Zero,
	}
	var live []*entity.StockBatch
	for b, err := range e.ledger.ListBatches(ctx, productID, ListBatchesOptions{UnitID: unitID}) {
		if err != nil {
			return nil, err
		}
		status := inventory.ClassifyWithWindow(b.ExpiryDate, now, window)
		value := inventory.BatchValue(b)
		res.Entries = append(res.Entries, ExpiryEntry{Batch: b, Status: status, Value: value})
		res.Counts[status.Bucket]++
		if status.Bucket == inventory.ExpiryExpired || status.Bucket == inventory.ExpiryExpiringSoon {
			res.ValueAtRisk = res.ValueAtRisk.Add(value)
		}
		live = append(live, b)
	}
	// Promediar costos de unidades distintas no tiene sentido.
	if unitID != "" {
		res.AverageCost = inventory.WeightedAverageCost(live)
	}
	return res, nil
}
