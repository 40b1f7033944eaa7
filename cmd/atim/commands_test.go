package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/atim/backend-go/internal/cache"
	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatuses(t *testing.T) {
	got, err := parseStatuses([]string{"Rising", "peaking"})
	require.NoError(t, err)
	assert.True(t, got[domain.TrendRising])
	assert.True(t, got[domain.TrendPeaking])

	none, err := parseStatuses(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseStatuses([]string{"exploding"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestFilterByStatus(t *testing.T) {
	trends := []domain.TrendResult{
		{Keyword: "a", Status: domain.TrendRising},
		{Keyword: "b", Status: domain.TrendStable},
	}
	assert.Len(t, filterByStatus(trends, nil), 2)

	kept := filterByStatus(trends, map[domain.TrendStatus]bool{domain.TrendStable: true})
	require.Len(t, kept, 1)
	assert.Equal(t, "b", kept[0].Keyword)
}

func TestNormalizeInto(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	cfg := config.New(v)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	dest := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(src, []byte("Shoe Description,Number of Items Left\nHiking Boots,30\n"), 0o644))

	require.NoError(t, normalizeInto(cfg, src, dest))

	items, err := inventory.LoadFile(dest, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.CategoryOutdoor, items[0].Category)
	assert.Equal(t, 21, items[0].LeadTimeDays)
}

func testConfig() *config.Config {
	v := viper.New()
	config.SetDefaults(v)
	return config.New(v)
}

func TestMergeInto(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	broken := filepath.Join(dir, "c.csv")
	dest := filepath.Join(dir, "merged.csv")
	require.NoError(t, os.WriteFile(first, []byte("Shoe Description,Number of Items Left\nHiking Boots,30\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("Shoe Description,Number of Items Left\nLoafers,12\nSandals,4\n"), 0o644))
	require.NoError(t, os.WriteFile(broken, []byte("Product,Qty\nClogs,1\n"), 0o644))

	require.NoError(t, mergeInto(testConfig(), []string{first, broken, second}, dest))

	items, err := inventory.LoadFile(dest, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Hiking Boots", items[0].ProductName)
	assert.Equal(t, "Sandals", items[2].ProductName)
}

func TestMergeIntoNothingValid(t *testing.T) {
	err := mergeInto(testConfig(), []string{filepath.Join(t.TempDir(), "missing.csv")}, filepath.Join(t.TempDir(), "out.csv"))
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

type countingCache struct {
	cache.TrendSeriesCache
	removed int
	err     error
}

func (c *countingCache) InvalidateAll(ctx context.Context) (int, error) {
	return c.removed, c.err
}

func TestClearTrendCache(t *testing.T) {
	ctx := context.Background()

	removed, err := clearTrendCache(ctx, cache.NewNoopTrendSeriesCache())
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = clearTrendCache(ctx, &countingCache{removed: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, removed)

	_, err = clearTrendCache(ctx, &countingCache{err: errors.New("connection refused")})
	assert.ErrorContains(t, err, "clear trend cache")
}
