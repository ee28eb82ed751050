package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"csgo-market-data/internal/services/steamdt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	items []steamdt.Item
	err   error
	calls int
}

func (f *fakeLister) ListItems(ctx context.Context) ([]steamdt.Item, error) {
	f.calls++
	return f.items, f.err
}

func testItems() []steamdt.Item {
	return []steamdt.Item{
		{
			MarketHashName: "AK-47 | Redline (Field-Tested)",
			PlatformList: []steamdt.PlatformRef{
				{Name: "BUFF", ItemID: "33815"},
				{Name: "C5", ItemID: "553370749"},
			},
		},
		{
			MarketHashName: "Sticker | Only BUFF",
			PlatformList:   []steamdt.PlatformRef{{Name: "BUFF", ItemID: "1"}},
		},
	}
}

func TestLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.txt")
	content := "# tracked\nAK-47 | Redline (Field-Tested)\n\n  AWP | Asiimov (Field-Tested)  \n#skip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	names, err := LoadWatchlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AK-47 | Redline (Field-Tested)", "AWP | Asiimov (Field-Tested)"}, names)
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestBuildMapping(t *testing.T) {
	m := BuildMapping(testItems(), C5Platform)

	ref, ok := m.Resolve("AK-47 | Redline (Field-Tested)")
	assert.True(t, ok)
	assert.Equal(t, "553370749", ref)

	_, ok = m.Resolve("Sticker | Only BUFF")
	assert.False(t, ok)
}

func TestEnsureFreshFetchesWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cache := Cache{ItemsPath: filepath.Join(dir, "all_items_cache.json"), NamesPath: filepath.Join(dir, "market_hash_names.txt")}
	lister := &fakeLister{items: testItems()}

	items, refreshed, err := cache.EnsureFresh(context.Background(), lister, time.Now())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, lister.calls)

	names, err := os.ReadFile(cache.NamesPath)
	require.NoError(t, err)
	assert.Equal(t, "AK-47 | Redline (Field-Tested)\nSticker | Only BUFF\n", string(names))

	m, err := cache.LoadMapping()
	require.NoError(t, err)
	assert.Equal(t, "553370749", m["AK-47 | Redline (Field-Tested)"])
}

func TestEnsureFreshReusesTodaysCache(t *testing.T) {
	dir := t.TempDir()
	cache := Cache{ItemsPath: filepath.Join(dir, "all_items_cache.json")}
	require.NoError(t, cache.Save(testItems()))

	lister := &fakeLister{err: errors.New("should not be called")}
	items, refreshed, err := cache.EnsureFresh(context.Background(), lister, time.Now())
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Len(t, items, 2)
	assert.Equal(t, 0, lister.calls)
}

func TestEnsureFreshRefetchesStaleCache(t *testing.T) {
	dir := t.TempDir()
	cache := Cache{ItemsPath: filepath.Join(dir, "all_items_cache.json")}
	require.NoError(t, cache.Save(testItems()[:1]))
	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(cache.ItemsPath, old, old))

	lister := &fakeLister{items: testItems()}
	items, refreshed, err := cache.EnsureFresh(context.Background(), lister, time.Now())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Len(t, items, 2)
}

func TestEnsureFreshUpstreamError(t *testing.T) {
	cache := Cache{ItemsPath: filepath.Join(t.TempDir(), "all_items_cache.json")}
	_, _, err := cache.EnsureFresh(context.Background(), &fakeLister{err: errors.New("boom")}, time.Now())
	assert.Error(t, err)
}
