package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const indexFile = "index.json"

// fileEnvelope 单个分析文件内容
type fileEnvelope struct {
	Record Record        `json:"storage_record"`
	Report *model.Report `json:"analysis_result"`
}

// FileStore 本地 JSON 文件存储，index.json 按时间倒序维护索引
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore 创建目录与空索引
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	s := &FileStore{dir: dir}
	if _, err := os.Stat(s.indexPath()); errors.Is(err, os.ErrNotExist) {
		if err := s.saveIndex(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, indexFile)
}

func (s *FileStore) loadIndex() ([]Record, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	var index []Record
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return index, nil
}

func (s *FileStore) saveIndex(index []Record) error {
	if index == nil {
		index = []Record{}
	}
	return writeJSON(s.indexPath(), index)
}

// Save 写入分析文件并更新索引
func (s *FileStore) Save(_ context.Context, rec Record, report *model.Report) error {
	if !validID(rec.ID) {
		return fmt.Errorf("invalid analysis id: %q", rec.ID)
	}
	rec.Filename = rec.ID + ".json"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(filepath.Join(s.dir, rec.Filename), fileEnvelope{Record: rec, Report: report}); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	kept := index[:0]
	for _, r := range index {
		if r.ID != rec.ID {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rec)
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Timestamp.After(kept[j].Timestamp) })

	if err := s.saveIndex(kept); err != nil {
		return err
	}
	logger.Log.Infof("分析结果已保存: %s", rec.ID)
	return nil
}

// Load 读取完整报告
func (s *FileStore) Load(_ context.Context, id string) (*model.Report, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", id, err)
	}
	if env.Report == nil {
		return nil, ErrNotFound
	}
	return env.Report, nil
}

// List 按时间倒序返回索引条目
func (s *FileStore) List(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	index, err := s.loadIndex()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(index))
	for _, r := range index {
		if matches(r, f.Company) {
			out = append(out, r)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Delete 删除文件与索引条目，返回记录是否存在
func (s *FileStore) Delete(_ context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existed := false
	err := os.Remove(filepath.Join(s.dir, id+".json"))
	switch {
	case err == nil:
		existed = true
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("remove analysis: %w", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return existed, err
	}
	kept := index[:0]
	for _, r := range index {
		if r.ID == id {
			existed = true
			continue
		}
		kept = append(kept, r)
	}
	if err := s.saveIndex(kept); err != nil {
		return existed, err
	}
	if existed {
		logger.Log.Infof("分析结果已删除: %s", id)
	}
	return existed, nil
}

// Stats 统计索引与文件大小
func (s *FileStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	index, err := s.loadIndex()
	s.mu.Unlock()
	if err != nil {
		return Stats{}, err
	}

	abs, _ := filepath.Abs(s.dir)
	st := Stats{TotalAnalyses: len(index), StoragePath: abs}

	var size int64
	companies := map[string]struct{}{}
	for _, r := range index {
		if fi, err := os.Stat(filepath.Join(s.dir, r.Filename)); err == nil {
			size += fi.Size()
		}
		companies[r.CompanyName] = struct{}{}
	}
	st.TotalSizeMB = math.Round(float64(size)/(1024*1024)*100) / 100
	st.CompaniesAnalyzed = len(companies)
	if len(index) > 0 {
		newest, oldest := index[0].Timestamp, index[len(index)-1].Timestamp
		st.NewestAnalysis, st.OldestAnalysis = &newest, &oldest
	}
	return st, nil
}

// Close 文件存储无需释放资源
func (s *FileStore) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
