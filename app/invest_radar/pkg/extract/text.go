package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"
)

const csvSampleRows = 20

func plainText(_ context.Context, data []byte, _ string) (string, int, error) {
	return strings.ToValidUTF8(string(data), ""), 0, nil
}

func csvText(_ context.Context, data []byte, _ string) (string, int, error) {
	r := csv.NewReader(strings.NewReader(strings.ToValidUTF8(string(data), "")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("csv read: %w", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return "Empty CSV file", 0, nil
	}

	headers := rows[0]
	lines := []string{
		"CSV Data Analysis:",
		fmt.Sprintf("Rows: %d, Columns: %d", len(rows), len(headers)),
		fmt.Sprintf("Headers: %s", strings.Join(headers, ", ")),
		"\nData Sample:",
	}
	for i, row := range rows[1:] {
		if i >= csvSampleRows {
			break
		}
		lines = append(lines, fmt.Sprintf("Row %d: %s", i+1, strings.Join(row, ", ")))
	}
	if len(rows) > csvSampleRows+1 {
		lines = append(lines, fmt.Sprintf("... and %d more rows", len(rows)-csvSampleRows-1))
	}
	return strings.Join(lines, "\n"), 0, nil
}

func jsonText(_ context.Context, data []byte, _ string) (string, int, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", 0, fmt.Errorf("json parse: %w", err)
	}
	return "JSON Data:\n" + out.String(), 0, nil
}

// htmlText 先用 readability 提取正文，失败时整页转 markdown
func htmlText(_ context.Context, data []byte, filename string) (string, int, error) {
	conv := md.NewConverter("", true, nil)

	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{Scheme: "file", Path: "/" + filename})
	if err == nil && strings.TrimSpace(article.Content) != "" {
		body, err := conv.ConvertString(article.Content)
		if err == nil {
			if article.Title != "" {
				body = "# " + article.Title + "\n\n" + body
			}
			return body, 0, nil
		}
	}

	body, err := conv.ConvertString(string(data))
	if err != nil {
		return "", 0, fmt.Errorf("html convert: %w", err)
	}
	return body, 0, nil
}
