package prefs

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloverhq/clover/pkg/redis"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewStore(redis.NewClientFromRedis(rdb, logger), logger)
}

func TestSettingsDefaults(t *testing.T) {
	store := testStore(t)

	settings, err := store.GetSettings(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	want := Settings{Theme: "dark", DefaultPageSize: 50, ShowHistoricalConnections: false, DateFormat: "yyyy-mm-dd"}
	require.NoError(t, store.SaveSettings(ctx, "u1", want))

	got, err := store.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Other users are unaffected.
	other, err := store.GetSettings(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), other)
}

func TestCollapsedSections(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	collapsed, err := store.CollapsedSections(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, collapsed)

	require.NoError(t, store.SetSectionCollapsed(ctx, "u1", "historical-relationships", true))
	require.NoError(t, store.SetSectionCollapsed(ctx, "u1", "touchpoints", true))

	collapsed, err = store.CollapsedSections(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, collapsed["historical-relationships"])
	assert.True(t, collapsed["touchpoints"])

	// Expanding removes the entry rather than storing false.
	require.NoError(t, store.SetSectionCollapsed(ctx, "u1", "touchpoints", false))
	collapsed, err = store.CollapsedSections(ctx, "u1")
	require.NoError(t, err)
	_, present := collapsed["touchpoints"]
	assert.False(t, present)
}

func TestClear(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSettings(ctx, "u1", Settings{Theme: "dark"}))
	require.NoError(t, store.SetSectionCollapsed(ctx, "u1", "emails", true))
	require.NoError(t, store.Clear(ctx, "u1"))

	settings, err := store.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)

	collapsed, err := store.CollapsedSections(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, collapsed)
}
