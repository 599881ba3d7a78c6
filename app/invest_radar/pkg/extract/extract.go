package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const (
	MethodText         = "text_decode"
	MethodCSV          = "csv_parse"
	MethodJSON         = "json_parse"
	MethodHTML         = "html_readability"
	MethodPDF          = "pdf_extract"
	MethodPPTX         = "pptx_extract"
	MethodExcel        = "excel_parse"
	MethodTextFallback = "text_fallback"
)

type handler struct {
	method string
	fn     func(ctx context.Context, data []byte, filename string) (string, int, error)
}

// 按扩展名分派
var handlers = map[string]handler{
	".txt":  {MethodText, plainText},
	".md":   {MethodText, plainText},
	".csv":  {MethodCSV, csvText},
	".json": {MethodJSON, jsonText},
	".html": {MethodHTML, htmlText},
	".htm":  {MethodHTML, htmlText},
	".pdf":  {MethodPDF, pdfText},
	".pptx": {MethodPPTX, pptxText},
	".xlsx": {MethodExcel, xlsxText},
	".xls":  {MethodExcel, xlsText},
}

// Extractor 文档文本提取
type Extractor struct{}

// New 创建提取器
func New() *Extractor {
	return &Extractor{}
}

// Extract 失败时返回占位文本与带错误的元信息，文件不会被丢弃
func (e *Extractor) Extract(ctx context.Context, data []byte, filename, contentType string) (string, model.ExtractionMeta, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	meta := model.ExtractionMeta{SizeBytes: len(data), Extension: ext}

	text, pages, method, err := e.dispatch(ctx, data, filename, ext, contentType)
	meta.Method = method
	meta.Pages = pages
	if err != nil {
		meta.Error = err.Error()
		return fmt.Sprintf("Error processing file %s: %v", filename, err), meta, err
	}
	return text, meta, nil
}

// dispatch 解析库在畸形输入上可能 panic，此处统一收敛为提取错误
func (e *Extractor) dispatch(ctx context.Context, data []byte, filename, ext, contentType string) (text string, pages int, method string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("文件 [%s] 解析 panic: %v", filename, r)
			text, pages, err = "", 0, fmt.Errorf("parser panic: %v", r)
		}
	}()

	if h, ok := handlers[ext]; ok {
		method = h.method
		text, pages, err = h.fn(ctx, data, filename)
		return text, pages, method, err
	}
	if isText(data, contentType) {
		text, _, err = plainText(ctx, data, filename)
		return text, 0, MethodTextFallback, err
	}
	return "", 0, "", fmt.Errorf("unsupported file type: %s", filename)
}

// isText 未知扩展名时按声明类型与内容嗅探判断是否为文本
func isText(data []byte, contentType string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ExtractAll 并发提取全部文档，结果顺序与输入一致
func (e *Extractor) ExtractAll(ctx context.Context, docs []model.Document, workers int) []model.ExtractedDocument {
	out := make([]model.ExtractedDocument, len(docs))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, doc := range docs {
		g.Go(func() error {
			text, meta, err := e.Extract(ctx, doc.Data, doc.Filename, doc.ContentType)
			if err != nil {
				logger.Log.Warnf("文件 [%s] 提取失败: %v", doc.Filename, err)
			}
			out[i] = model.ExtractedDocument{
				Filename:    doc.Filename,
				ContentType: doc.ContentType,
				Text:        text,
				Meta:        meta,
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
