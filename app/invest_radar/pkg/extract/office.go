package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	drawingNS     = "http://schemas.openxmlformats.org/drawingml/2006/main"
	xlsxSampleRow = 10
)

var (
	slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	cellRefRe   = regexp.MustCompile(`^([A-Z]+)`)
)

func openZip(data []byte) (map[string]*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}
	return parts, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// pptxText 逐页读取幻灯片中的 <a:t> 文本，每个 <a:p> 为一行
func pptxText(_ context.Context, data []byte, _ string) (string, int, error) {
	parts, err := openZip(data)
	if err != nil {
		return "", 0, err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for name, f := range parts {
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{num: n, file: f})
		}
	}
	if len(slides) == 0 {
		return "", 0, errors.New("no slides found in presentation")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out []string
	for _, s := range slides {
		raw, err := readPart(s.file)
		if err != nil {
			return "", len(slides), fmt.Errorf("read slide %d: %w", s.num, err)
		}
		paras, err := slideParagraphs(raw)
		if err != nil {
			return "", len(slides), fmt.Errorf("parse slide %d: %w", s.num, err)
		}
		if len(paras) > 0 {
			out = append(out, fmt.Sprintf("--- Slide %d ---\n%s", s.num, strings.Join(paras, "\n")))
		}
	}
	if len(out) == 0 {
		return "No extractable text found in presentation", len(slides), nil
	}
	return strings.Join(out, "\n\n"), len(slides), nil
}

func slideParagraphs(raw []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var (
		paras  []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == drawingNS && t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Space != drawingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(cur.String()); s != "" {
					paras = append(paras, s)
				}
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}

type xlsxWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

type xlsxSST struct {
	Items []struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type xlsxSheet struct {
	Rows []struct {
		Cells []struct {
			Ref    string `xml:"r,attr"`
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline string `xml:"is>t"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// xlsxText 读取共享字符串与各工作表，首行视为表头
func xlsxText(_ context.Context, data []byte, _ string) (string, int, error) {
	parts, err := openZip(data)
	if err != nil {
		return "", 0, err
	}

	wbPart, ok := parts["xl/workbook.xml"]
	if !ok {
		return "", 0, errors.New("workbook part missing")
	}
	var wb xlsxWorkbook
	if err := decodePart(wbPart, &wb); err != nil {
		return "", 0, fmt.Errorf("parse workbook: %w", err)
	}

	var shared []string
	if f, ok := parts["xl/sharedStrings.xml"]; ok {
		var sst xlsxSST
		if err := decodePart(f, &sst); err != nil {
			return "", 0, fmt.Errorf("parse shared strings: %w", err)
		}
		for _, si := range sst.Items {
			s := si.T
			for _, r := range si.Runs {
				s += r.T
			}
			shared = append(shared, s)
		}
	}

	lines := []string{fmt.Sprintf("Excel Analysis - %d sheet(s):", len(wb.Sheets))}
	for i, sh := range wb.Sheets {
		f, ok := parts[fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)]
		if !ok {
			continue
		}
		var sheet xlsxSheet
		if err := decodePart(f, &sheet); err != nil {
			return "", 0, fmt.Errorf("parse sheet %s: %w", sh.Name, err)
		}
		lines = append(lines, sheetSummary(sh.Name, sheetRows(sheet, shared))...)
	}
	return strings.Join(lines, "\n"), 0, nil
}

func decodePart(f *zip.File, v any) error {
	raw, err := readPart(f)
	if err != nil {
		return err
	}
	return xml.Unmarshal(raw, v)
}

func sheetRows(sheet xlsxSheet, shared []string) [][]string {
	rows := make([][]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		var row []string
		for i, c := range r.Cells {
			col := i
			if m := cellRefRe.FindString(c.Ref); m != "" {
				col = columnIndex(m)
			}
			for len(row) <= col {
				row = append(row, "")
			}
			switch c.Type {
			case "s":
				if idx, err := strconv.Atoi(c.Value); err == nil && idx >= 0 && idx < len(shared) {
					row[col] = shared[idx]
				}
			case "inlineStr":
				row[col] = c.Inline
			default:
				row[col] = c.Value
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sheetSummary(name string, rows [][]string) []string {
	lines := []string{fmt.Sprintf("\n--- Sheet: %s ---", name)}
	if len(rows) == 0 {
		lines = append(lines, "Dimensions: 0 rows × 0 columns")
		return lines
	}
	header, body := rows[0], rows[1:]
	lines = append(lines,
		fmt.Sprintf("Dimensions: %d rows × %d columns", len(body), len(header)),
		fmt.Sprintf("Columns: %s", strings.Join(header, ", ")),
		"\nSample Data:",
	)
	for i, row := range body {
		if i >= xlsxSampleRow {
			break
		}
		var cells []string
		for j, v := range row {
			if v == "" {
				continue
			}
			col := fmt.Sprintf("Column%d", j+1)
			if j < len(header) && header[j] != "" {
				col = header[j]
			}
			cells = append(cells, fmt.Sprintf("%s: %s", col, v))
		}
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, strings.Join(cells, ", ")))
	}
	if len(body) > xlsxSampleRow {
		lines = append(lines, fmt.Sprintf("  ... and %d more rows", len(body)-xlsxSampleRow))
	}
	return lines
}

// columnIndex 将列字母转为从 0 开始的下标
func columnIndex(letters string) int {
	n := 0
	for _, c := range letters {
		n = n*26 + int(c-'A'+1)
	}
	return n - 1
}
