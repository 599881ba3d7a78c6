package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/extrame/xls"
)

// xlsText 读取 BIFF 格式工作簿，采样方式与 xlsx 一致
func xlsText(_ context.Context, data []byte, _ string) (string, int, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", 0, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return "", 0, errors.New("workbook has no sheets")
	}

	n := wb.NumSheets()
	lines := []string{fmt.Sprintf("Excel Analysis - %d sheet(s):", n)}
	for i := 0; i < n; i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		lines = append(lines, sheetSummary(sheet.Name, xlsRows(sheet))...)
	}
	return strings.Join(lines, "\n"), 0, nil
}

func xlsRows(sheet *xls.WorkSheet) [][]string {
	var rows [][]string
	for r := 0; r <= int(sheet.MaxRow); r++ {
		row := sheet.Row(r)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, strings.TrimSpace(row.Col(c)))
		}
		rows = append(rows, cells)
	}
	return rows
}
