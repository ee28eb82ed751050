package export

import (
	"path/filepath"
	"strings"
	"testing"

	"csgo-market-data/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "klines.xlsx")

	wb := NewWorkbook()
	name, err := wb.AddKlines(Sheet{
		Name: "AK-47 | Redline (Field-Tested)",
		Rows: []models.KlineRecord{
			{Timestamp: 1735488000, OpenPrice: 10, ClosePrice: 11, HighPrice: 12, LowPrice: 9, Volume: 100, Turnover: 1000},
			{Timestamp: 1735574400, OpenPrice: 11, ClosePrice: 12, HighPrice: 13, LowPrice: 10},
		},
	})
	require.NoError(t, err)
	indexName, err := wb.AddIndex([]models.MarketIndexPoint{{Timestamp: 1735488000, IndexValue: 1012.5}})
	require.NoError(t, err)
	require.NoError(t, wb.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{name, indexName}, f.GetSheetList())

	rows, err := f.GetRows(name)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "日期", rows[0][0])
	assert.Equal(t, []string{"2024-12-30", "1735488000", "10", "11", "12", "9", "100", "1000"}, rows[1])
	assert.Equal(t, "2024-12-31", rows[2][0])

	idx, err := f.GetRows(indexName)
	require.NoError(t, err)
	assert.Equal(t, "1012.5", idx[1][2])
}

func TestUniqueName(t *testing.T) {
	wb := NewWorkbook()
	long := strings.Repeat("x", 40)

	assert.Equal(t, "a_b_c", wb.uniqueName("a/b:c"))
	first := wb.uniqueName(long)
	assert.Len(t, first, 31)
	second := wb.uniqueName(long)
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(second, "~2"))
	assert.Len(t, second, 31)
}

func TestSaveEmptyWorkbook(t *testing.T) {
	assert.Error(t, NewWorkbook().SaveAs(filepath.Join(t.TempDir(), "empty.xlsx")))
}
