package ingest

import (
	"context"
	"errors"
	"testing"

	"csgo-market-data/internal/database"
	"csgo-market-data/internal/models"
	"csgo-market-data/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB prepares an in-memory SQLite database with all tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db), "failed to migrate tables")
	return db
}

func countKlines(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.KlineRecord{}).Where("market_hash_name = ?", name).Count(&n).Error)
	return n
}

// mockFetcher records every call and answers from FetchFunc.
type mockFetcher struct {
	FetchFunc func(ctx context.Context, ref string, bound FetchBound) ([]Sample, error)
	Calls     []fetchCall
}

type fetchCall struct {
	Ref   string
	Bound FetchBound
}

func (m *mockFetcher) Fetch(ctx context.Context, ref string, bound FetchBound) ([]Sample, error) {
	m.Calls = append(m.Calls, fetchCall{Ref: ref, Bound: bound})
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ref, bound)
	}
	return nil, errors.New("FetchFunc is not implemented")
}

type mapResolver map[string]string

func (m mapResolver) Resolve(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type countingPacer struct {
	Calls int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.Calls++
	return ctx.Err()
}

// flakySeries wraps a Series and fails inserts of chosen anchors.
type flakySeries struct {
	Series
	failAnchors map[int64]bool
}

func (f *flakySeries) Insert(ctx context.Context, row models.AnchoredRow) error {
	if f.failAnchors[row.AnchorTimestamp()] {
		return errors.New("constraint violation")
	}
	return f.Series.Insert(ctx, row)
}

// brokenSeries fails every lookup.
type brokenSeries struct {
	Series
}

func (brokenSeries) Exists(context.Context, string, int64) (bool, error) {
	return false, errors.New("connection lost")
}

func (brokenSeries) ExistingAnchors(context.Context, string, []int64) (map[int64]bool, error) {
	return nil, errors.New("connection lost")
}

func klineSeries(db *gorm.DB) *store.Series {
	return store.NewKlineSeries(db)
}

// caseSamples is the three-day sample set: two closed days and the live one.
func caseSamples() []Sample {
	return []Sample{
		{Timestamp: 1735488000000, Values: []float64{10, 11, 12, 9, 100, 1000}},
		{Timestamp: 1735574400000, Values: []float64{11, 12, 13, 10, 110, 1100}},
		{Timestamp: 1735660800000, Values: []float64{12, 13, 14, 11, 120, 1200}},
	}
}
