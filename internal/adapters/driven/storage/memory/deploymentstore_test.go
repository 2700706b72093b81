package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

func TestDeploymentStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDeploymentStore()

	d := domain.Deployment{
		ID:        "dep-1",
		AppName:   "content-optimizer",
		Platform:  domain.PlatformRailway,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, "dep-1")
	require.NoError(t, err)
	assert.Equal(t, "content-optimizer", got.AppName)

	require.NoError(t, store.Delete(ctx, "dep-1"))

	_, err = store.Get(ctx, "dep-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "dep-1"), domain.ErrNotFound)
}

func TestDeploymentStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewDeploymentStore()

	now := time.Now()
	require.NoError(t, store.Save(ctx, domain.Deployment{ID: "old", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Deployment{ID: "new", CreatedAt: now}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}
