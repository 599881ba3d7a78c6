package server

import (
	"context"
	"io"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/invest_radar/app/display/internal/conf"
	"github.com/iWorld-y/invest_radar/app/display/internal/service"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const (
	defaultMaxUploadMB = 64
	// 需大于引擎的 RequestTimeout
	defaultTimeout = 16 * time.Minute

	OperationAnalyze        = "/invest_radar.display.v1.Display/Analyze"
	OperationSummary        = "/invest_radar.display.v1.Display/Summary"
	OperationQuestions      = "/invest_radar.display.v1.Display/Questions"
	OperationScoring        = "/invest_radar.display.v1.Display/Scoring"
	OperationListAnalyses   = "/invest_radar.display.v1.Display/ListAnalyses"
	OperationGetAnalysis    = "/invest_radar.display.v1.Display/GetAnalysis"
	OperationDeleteAnalysis = "/invest_radar.display.v1.Display/DeleteAnalysis"
	OperationStats          = "/invest_radar.display.v1.Display/Stats"
)

func NewHTTPServer(c *conf.Server, s *service.DisplayService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	maxUpload := int64(defaultMaxUploadMB)
	timeout := defaultTimeout
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				timeout = d
			}
		}
		if c.Http.MaxUploadMb > 0 {
			maxUpload = int64(c.Http.MaxUploadMb)
		}
	}

	opts = append(opts, http.Timeout(timeout))

	srv := http.NewServer(opts...)
	registerRoutes(srv, s, maxUpload<<20)
	srv.Handle("/metrics", promhttp.Handler())
	return srv
}

func registerRoutes(srv *http.Server, s *service.DisplayService, maxMemory int64) {
	r := srv.Route("/")

	r.POST("/analyze", uploadHandler(OperationAnalyze, maxMemory, s.Analyze))
	r.POST("/summary", uploadHandler(OperationSummary, maxMemory, s.Summary))
	r.POST("/questions", uploadHandler(OperationQuestions, maxMemory, s.Questions))
	r.POST("/scoring", uploadHandler(OperationScoring, maxMemory, s.Scoring))

	// stats 需先于 {id} 注册
	r.GET("/analyses/stats", func(ctx http.Context) error {
		http.SetOperation(ctx, OperationStats)
		h := ctx.Middleware(func(ctx context.Context, _ interface{}) (interface{}, error) {
			return s.Stats(ctx)
		})
		return reply(ctx, h, nil)
	})
	r.GET("/analyses", func(ctx http.Context) error {
		var in listAnalysesReq
		if err := ctx.BindQuery(&in); err != nil {
			return errors.BadRequest("INVALID_QUERY", err.Error())
		}
		http.SetOperation(ctx, OperationListAnalyses)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			q := req.(*listAnalysesReq)
			return s.ListAnalyses(ctx, q.Company, q.Limit)
		})
		return reply(ctx, h, &in)
	})
	r.GET("/analyses/{id}", func(ctx http.Context) error {
		http.SetOperation(ctx, OperationGetAnalysis)
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.GetAnalysis(c, req.(string))
		})
		return reply(ctx, h, ctx.Vars().Get("id"))
	})
	r.DELETE("/analyses/{id}", func(ctx http.Context) error {
		http.SetOperation(ctx, OperationDeleteAnalysis)
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return s.DeleteAnalysis(c, req.(string))
		})
		return reply(ctx, h, ctx.Vars().Get("id"))
	})

	r.GET("/", func(ctx http.Context) error {
		return ctx.Result(nethttp.StatusOK, s.Root(ctx))
	})
	r.GET("/health", func(ctx http.Context) error {
		return ctx.Result(nethttp.StatusOK, s.Health(ctx))
	})
	r.GET("/agents", func(ctx http.Context) error {
		return ctx.Result(nethttp.StatusOK, s.Agents(ctx))
	})
}

type listAnalysesReq struct {
	Company string `json:"company"`
	Limit   int    `json:"limit"`
}

func reply(ctx http.Context, h func(context.Context, interface{}) (interface{}, error), in interface{}) error {
	out, err := h(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

// uploadHandler 解析 multipart 的 files 字段后调用分析方法
func uploadHandler[T any](operation string, maxMemory int64, call func(context.Context, []model.Document) (T, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		docs, err := readUploads(ctx.Request(), maxMemory)
		if err != nil {
			return err
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
			return call(c, req.([]model.Document))
		})
		return reply(ctx, h, docs)
	}
}

func readUploads(r *nethttp.Request, maxMemory int64) ([]model.Document, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, errors.BadRequest("INVALID_UPLOAD", err.Error())
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, errors.BadRequest("NO_FILES", "No files provided for analysis")
	}

	docs := make([]model.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, errors.BadRequest("INVALID_UPLOAD", err.Error())
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.BadRequest("INVALID_UPLOAD", err.Error())
		}
		docs = append(docs, model.Document{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return docs, nil
}
