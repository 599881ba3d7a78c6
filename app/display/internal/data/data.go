package data

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/invest_radar/app/display/internal/conf"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/storage"
)

// Data 持有存储后端，未配置存储时 store 为 nil
type Data struct {
	store storage.Store
}

// NewData 按配置打开存储后端
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	store, err := storage.New(StorageConfig(c))
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		helper.Warn("未配置存储，分析结果不会持久化")
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if store != nil {
			if err := store.Close(); err != nil {
				helper.Errorf("close storage: %v", err)
			}
		}
	}
	return &Data{store: store}, cleanup, nil
}

// StorageConfig 将服务配置转换为存储配置
func StorageConfig(c *conf.Data) config.StorageConfig {
	if c == nil || c.Storage == nil {
		return config.StorageConfig{}
	}
	out := config.StorageConfig{
		Driver: c.Storage.Driver,
		Path:   c.Storage.Path,
	}
	if db := c.Storage.Db; db != nil {
		out.DB = config.DBConfig{
			Host:     db.Host,
			Port:     int(db.Port),
			User:     db.User,
			Password: db.Password,
			Name:     db.Name,
		}
	}
	return out
}
