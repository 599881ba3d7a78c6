package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/invest_radar/app/display/internal/data"
	"github.com/iWorld-y/invest_radar/app/display/internal/service"
	"github.com/iWorld-y/invest_radar/app/display/internal/usecase"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/engine"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Engine providers
	NewEngineConfig,
	NewAnalysisEngine,
	NewServiceInfo,
	wire.Bind(new(usecase.Analyzer), new(*engine.Engine)),

	// Data providers
	data.NewData,
	data.NewAnalysisRepo,

	// UseCase providers
	usecase.NewAnalysisUseCase,

	// Service providers
	service.NewDisplayService,
)
