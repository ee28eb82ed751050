package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"csgo-market-data/internal/database"
	"csgo-market-data/internal/models"
	"csgo-market-data/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	day   int64 = 86400
	start int64 = 1735488000
	item        = "AK-47 | Redline (Field-Tested)"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	h := NewHandler(
		NewCachingKlineStore(nil, 0, store.NewKlineReader(db)),
		store.NewIndexReader(db),
		store.NewSnapshotStore(db),
	)
	r := gin.New()
	SetupRoutes(r.Group("/api/v1"), h)
	return r, db
}

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func get(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	var env envelope
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestGetKlines(t *testing.T) {
	r, db := setupRouter(t)
	series := store.NewKlineSeries(db)
	ctx := context.Background()
	for i, ts := range []int64{start + day, start} {
		require.NoError(t, series.Insert(ctx, &models.KlineRecord{MarketHashName: item, TypeVal: "1", Timestamp: ts, ClosePrice: float64(i)}))
	}

	w, env := get(t, r, "/api/v1/klines?name="+url.QueryEscape(item))
	require.Equal(t, http.StatusOK, w.Code)

	var rows []models.KlineRecord
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, start, rows[0].Timestamp)
	assert.Equal(t, start+day, rows[1].Timestamp)
}

func TestGetKlinesMissingName(t *testing.T) {
	r, _ := setupRouter(t)
	w, _ := get(t, r, "/api/v1/klines")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetKlinesEmpty(t *testing.T) {
	r, _ := setupRouter(t)
	w, env := get(t, r, "/api/v1/klines?name=nothing")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestGetKlineGaps(t *testing.T) {
	r, db := setupRouter(t)
	series := store.NewKlineSeries(db)
	ctx := context.Background()
	for _, ts := range []int64{start, start + day, start + 4*day} {
		require.NoError(t, series.Insert(ctx, &models.KlineRecord{MarketHashName: item, TypeVal: "1", Timestamp: ts}))
	}

	w, env := get(t, r, "/api/v1/klines/gaps?name="+url.QueryEscape(item))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Continuous bool `json:"continuous"`
		Report     struct {
			Gaps []struct {
				Missing int `json:"missing"`
			} `json:"gaps"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.False(t, body.Continuous)
	require.Len(t, body.Report.Gaps, 1)
	assert.Equal(t, 2, body.Report.Gaps[0].Missing)
}

func TestGetIndex(t *testing.T) {
	r, db := setupRouter(t)
	require.NoError(t, db.Create(&models.MarketIndexPoint{IndexValue: 1012.5, Timestamp: start}).Error)

	w, env := get(t, r, "/api/v1/index")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.MarketIndexPoint
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 1012.5, rows[0].IndexValue)
}

func TestGetPrices(t *testing.T) {
	r, db := setupRouter(t)
	snaps := store.NewSnapshotStore(db)
	require.NoError(t, snaps.Append(context.Background(), []models.PriceSnapshot{
		{MarketHashName: item, Timestamp: 100, Platform: "MIXED", SellPrice: 10, BiddingPrice: 9, SalesVolume: "12"},
		{MarketHashName: item, Timestamp: 200, Platform: "MIXED", SellPrice: 11, BiddingPrice: 10, SalesVolume: "未能获取"},
	}))

	w, env := get(t, r, "/api/v1/prices?limit=1&name="+url.QueryEscape(item))
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.PriceSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(200), rows[0].Timestamp)
	assert.Equal(t, "未能获取", rows[0].SalesVolume)
}
