package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var contentPageRe = regexp.MustCompile(`(?:Content_page_|page_)(\d+)`)

// pdfText 用 pdfcpu 导出各页内容流，再从内容流中提取文本操作符的字符串
func pdfText(_ context.Context, data []byte, _ string) (string, int, error) {
	dir, err := os.MkdirTemp("", "invest-radar-pdf-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write temp pdf: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(in)
	if err != nil {
		return "", 0, fmt.Errorf("read pdf: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(dir, "content")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", pageCount, fmt.Errorf("create content dir: %w", err)
	}
	if err := api.ExtractContentFile(in, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", pageCount, fmt.Errorf("extract pdf content: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", pageCount, fmt.Errorf("read content dir: %w", err)
	}
	pageTexts := map[int]string{}
	for _, f := range files {
		m := contentPageRe.FindStringSubmatch(f.Name())
		if f.IsDir() || m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		raw, err := os.ReadFile(filepath.Join(outDir, f.Name()))
		if err != nil {
			continue
		}
		pageTexts[n] += contentText(string(raw))
	}

	pages := make([]int, 0, len(pageTexts))
	for n := range pageTexts {
		pages = append(pages, n)
	}
	sort.Ints(pages)

	var parts []string
	for _, n := range pages {
		if text := strings.TrimSpace(pageTexts[n]); text != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", n, text))
		}
	}
	if len(parts) == 0 {
		return "No extractable text found in PDF", pageCount, nil
	}
	return strings.Join(parts, "\n\n"), pageCount, nil
}

// contentText 从页面内容流中取出 BT/ET 块内的字面量字符串
func contentText(stream string) string {
	var (
		out, line strings.Builder
		inText    bool
		inArray   bool
	)
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '(':
			s, n := readLiteral(stream[i:])
			if inText {
				line.WriteString(s)
			}
			i += n
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case c == '<' && i+1 < len(stream) && stream[i+1] != '<':
			// 十六进制字符串依赖字体编码，跳过
			end := strings.IndexByte(stream[i:], '>')
			if end < 0 {
				i = len(stream)
			} else {
				i += end + 1
			}
		case isPDFSpace(c):
			i++
		default:
			j := i
			for j < len(stream) && !isPDFSpace(stream[j]) && !isPDFDelim(stream[j]) {
				j++
			}
			if j == i {
				j++
			}
			tok := stream[i:j]
			switch tok {
			case "BT":
				inText = true
			case "ET":
				inText = false
				flush()
			case "T*", "Td", "TD", "'", `"`:
				flush()
			default:
				// TJ 数组中较大的负偏移视为单词间距
				if inArray && inText {
					if v, err := strconv.ParseFloat(tok, 64); err == nil && v <= -200 {
						line.WriteByte(' ')
					}
				}
			}
			i = j
		}
	}
	flush()
	return out.String()
}

// readLiteral 读取 PDF 字面量字符串，返回解码内容与消耗的字节数
func readLiteral(s string) (string, int) {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		case '\\':
			if i+1 >= len(s) {
				return sb.String(), len(s)
			}
			i++
			switch e := s[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
			default:
				if e >= '0' && e <= '7' {
					end := i
					for end < len(s) && end < i+3 && s[end] >= '0' && s[end] <= '7' {
						end++
					}
					v, _ := strconv.ParseUint(s[i:end], 8, 8)
					sb.WriteByte(byte(v))
					i = end - 1
				} else {
					sb.WriteByte(e)
				}
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(s)
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
