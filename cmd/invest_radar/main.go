package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/engine"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/storage"
)

func main() {
	confPath := flag.String("conf", "configs/config.yaml", "配置文件路径")
	dir := flag.String("dir", "", "待分析材料所在目录")
	out := flag.String("out", "output/report.json", "报告输出路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*confPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if *dir == "" {
		log.Fatal("参数错误: 未指定材料目录 (-dir)")
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动投资雷达...")

	// 3. 读取材料
	docs, err := loadDocuments(*dir)
	if err != nil {
		logger.Log.Fatalf("读取材料失败: %v", err)
	}
	if len(docs) == 0 {
		logger.Log.Fatalf("目录 %s 中没有可分析的文件", *dir)
	}
	logger.Log.Infof("共读取 %d 个文件", len(docs))

	// 4. 初始化引擎
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 5. 执行分析
	report := eng.Analyze(context.Background(), docs)
	logger.Log.Infof("分析完成: status=%s company=%s overall=%.2f recommendation=%s",
		report.Status, report.CompanyName(), report.Score.Overall, report.Score.Recommendation)

	// 6. 持久化
	if report.Status == model.StatusSuccess {
		persist(cfg.Storage, report)
	}

	// 7. 输出报告
	if err := writeReport(*out, report); err != nil {
		logger.Log.Fatalf("写入报告失败: %v", err)
	}
	logger.Log.Infof("✅ 报告已生成: %s", *out)
}

// loadDocuments 读取目录下的全部常规文件，按文件名排序
func loadDocuments(dir string) ([]model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []model.Document
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		docs = append(docs, model.Document{
			Filename:    entry.Name(),
			ContentType: mimetype.Detect(data).String(),
			Data:        data,
		})
	}
	return docs, nil
}

func persist(cfg config.StorageConfig, report *model.Report) {
	store, err := storage.New(cfg)
	if err != nil {
		logger.Log.Errorf("无法初始化存储: %v. 将仅输出报告文件。", err)
		return
	}
	if store == nil {
		logger.Log.Info("未配置存储，跳过持久化")
		return
	}
	defer store.Close()

	rec := storage.NewRecord(report, time.Now())
	if err := store.Save(context.Background(), rec, report); err != nil {
		logger.Log.Errorf("保存分析结果失败: %v", err)
		return
	}
	report.ID = rec.ID
	logger.Log.Infof("分析结果已保存: %s", rec.ID)
}

func writeReport(path string, report *model.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
