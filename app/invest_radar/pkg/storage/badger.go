package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/timshannon/badgerhold/v4"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// badgerAnalysis 存入 badger 的条目，报告以 JSON 保存
type badgerAnalysis struct {
	ID           string
	CompanyLower string
	CreatedAt    int64
	Record       Record
	Report       []byte
}

// BadgerStore 嵌入式 badger 存储
type BadgerStore struct {
	store *badgerhold.Store
	path  string
}

// NewBadgerStore 打开 badger 数据目录
func NewBadgerStore(path string) (*BadgerStore, error) {
	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerStore{store: store, path: path}, nil
}

// Save 写入或覆盖同 ID 的分析
func (s *BadgerStore) Save(_ context.Context, rec Record, report *model.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	item := badgerAnalysis{
		ID:           rec.ID,
		CompanyLower: strings.ToLower(rec.CompanyName),
		CreatedAt:    rec.Timestamp.UnixNano(),
		Record:       rec,
		Report:       raw,
	}
	if err := s.store.Upsert(rec.ID, item); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// Load 读取完整报告
func (s *BadgerStore) Load(_ context.Context, id string) (*model.Report, error) {
	var item badgerAnalysis
	if err := s.store.Get(id, &item); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	var report model.Report
	if err := json.Unmarshal(item.Report, &report); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", id, err)
	}
	return &report, nil
}

// List 按创建时间倒序列出
func (s *BadgerStore) List(_ context.Context, f Filter) ([]Record, error) {
	query := badgerhold.Where("ID").Ne("")
	if f.Company != "" {
		query = badgerhold.Where("CompanyLower").RegExp(regexp.MustCompile(regexp.QuoteMeta(strings.ToLower(f.Company))))
	}
	query = query.SortBy("CreatedAt").Reverse()
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var items []badgerAnalysis
	if err := s.store.Find(&items, query); err != nil {
		return nil, fmt.Errorf("find analyses: %w", err)
	}
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = item.Record
	}
	return out, nil
}

// Delete 返回记录是否存在
func (s *BadgerStore) Delete(_ context.Context, id string) (bool, error) {
	err := s.store.Delete(id, badgerAnalysis{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	return true, nil
}

// Stats 遍历全部条目统计
func (s *BadgerStore) Stats(_ context.Context) (Stats, error) {
	var items []badgerAnalysis
	if err := s.store.Find(&items, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return Stats{}, fmt.Errorf("find analyses: %w", err)
	}

	st := Stats{TotalAnalyses: len(items), StoragePath: s.path}
	var size int
	companies := map[string]struct{}{}
	for _, item := range items {
		size += len(item.Report)
		companies[item.Record.CompanyName] = struct{}{}
	}
	st.TotalSizeMB = math.Round(float64(size)/(1024*1024)*100) / 100
	st.CompaniesAnalyzed = len(companies)
	if len(items) > 0 {
		newest, oldest := items[0].Record.Timestamp, items[len(items)-1].Record.Timestamp
		st.NewestAnalysis, st.OldestAnalysis = &newest, &oldest
	}
	return st, nil
}

// Close 关闭数据库
func (s *BadgerStore) Close() error {
	return s.store.Close()
}
