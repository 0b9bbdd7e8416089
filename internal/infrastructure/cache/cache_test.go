package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateKey(t *testing.T) {
	assert.Equal(t, "inventory:aggregate:P-1:kg", aggregateKey("P-1", "kg"))
}

func TestNoopAggregateCache(t *testing.T) {
	var c NoopAggregateCache
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, nil, 0))
	agg, ok, err := c.Get(ctx, "P", "kg")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, agg)
	assert.NoError(t, c.Delete(ctx, "P", "kg"))
}
