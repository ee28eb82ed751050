// Package export writes stored series to Excel workbooks.
package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"csgo-market-data/internal/anchor"
	"csgo-market-data/internal/models"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var klineHeader = []interface{}{"日期", "时间戳", "开盘", "收盘", "最高", "最低", "成交量", "成交额"}

// Sheet is one worksheet's worth of candles.
type Sheet struct {
	Name string
	Rows []models.KlineRecord
}

// Workbook collects sheets and saves them as one .xlsx file.
type Workbook struct {
	f     *excelize.File
	names map[string]bool
	count int
}

func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile(), names: map[string]bool{}}
}

// AddKlines writes a header row plus one row per candle, oldest first.
func (w *Workbook) AddKlines(s Sheet) (string, error) {
	name := w.uniqueName(s.Name)
	if _, err := w.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("new sheet %s: %w", name, err)
	}
	if err := w.f.SetSheetRow(name, "A1", &klineHeader); err != nil {
		return "", err
	}
	for i, r := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := []interface{}{
			anchor.Date(r.Timestamp),
			r.Timestamp, r.OpenPrice, r.ClosePrice, r.HighPrice, r.LowPrice, r.Volume, r.Turnover,
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return "", err
		}
	}
	w.count++
	return name, nil
}

// AddIndex writes the market index series to its own sheet.
func (w *Workbook) AddIndex(points []models.MarketIndexPoint) (string, error) {
	name := w.uniqueName("大盘指数")
	if _, err := w.f.NewSheet(name); err != nil {
		return "", err
	}
	header := []interface{}{"日期", "时间戳", "指数"}
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return "", err
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := []interface{}{anchor.Date(p.Timestamp), p.Timestamp, p.IndexValue}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return "", err
		}
	}
	w.count++
	return name, nil
}

// SaveAs drops the default sheet and writes the file.
func (w *Workbook) SaveAs(path string) error {
	defer w.f.Close()
	if w.count == 0 {
		return fmt.Errorf("nothing to export")
	}
	if !w.names["sheet1"] {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	w.f.SetActiveSheet(0)
	return w.f.SaveAs(path)
}

// uniqueName strips characters Excel rejects, truncates to 31 runes and
// suffixes duplicates.
func (w *Workbook) uniqueName(raw string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(raw))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "sheet"
	}

	name := truncate(base, maxSheetName)
	for i := 2; w.names[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		name = truncate(base, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	w.names[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
