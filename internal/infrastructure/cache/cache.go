// Package cache implementa la caché de lectura de AggregateQuantity.
package cache

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ inventory.AggregateCache = NoopAggregateCache{}

// NoopAggregateCache nunca guarda nada; se usa cuando no hay Redis configurado.
type NoopAggregateCache struct{}

func (NoopAggregateCache) Get(context.Context, string, string) (*entity.AggregateQuantity, bool, error) {
	return nil, false, nil
}

func (NoopAggregateCache) Set(context.Context, *entity.AggregateQuantity, time.Duration) error {
	return nil
}

func (NoopAggregateCache) Delete(context.Context, string, string) error { return nil }

func aggregateKey(productID, unitID string) string {
	return "inventory:aggregate:" + productID + ":" + unitID
}
