package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	cmap "github.com/orcaman/concurrent-map/v2"
	"gorm.io/gorm"

	"github.com/ustclug/ytail/pkg/cron"
	"github.com/ustclug/ytail/pkg/model"
	"github.com/ustclug/ytail/pkg/s3seek"
)

const jobRefreshMetas = "refresh-metas"

type Server struct {
	e          *echo.Echo
	db         *gorm.DB
	cron       *cron.Cron
	config     *Config
	logger     *slog.Logger
	refreshing cmap.ConcurrentMap[string, struct{}]
	// nil unless S3 is configured
	s3 s3seek.ObjectAPI
}

func New(configPath string) (*Server, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

func newSlogger(writer io.Writer, addSource bool, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Taken from https://gist.github.com/HalCanary/6bd335057c65f3b803088cc55b9ebd2b
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					_, after, _ := strings.Cut(source.File, "ytail")
					source.File = after
				}
			}
			return a
		},
	}))
}

func NewWithConfig(cfg *Config) (*Server, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DbURL), &gorm.Config{
		QueryFields: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// To resolve the "database is locked" error.
	// See also https://github.com/mattn/go-sqlite3/issues/209
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	var logOutput io.Writer = os.Stderr
	if len(cfg.LogDir) > 0 {
		if err := os.MkdirAll(cfg.LogDir, os.ModePerm); err != nil {
			return nil, err
		}
		logfile, err := os.OpenFile(filepath.Join(cfg.LogDir, "ytaild.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		logOutput = logfile
	}

	slogger := newSlogger(logOutput, cfg.Debug, cfg.LogLevel)
	s := Server{
		e:          echo.New(),
		cron:       cron.New(),
		db:         db,
		logger:     slogger,
		config:     cfg,
		refreshing: cmap.New[struct{}](),
	}
	if cfg.s3Enabled() {
		cli, err := s3seek.NewClient(context.Background(), cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		s.s3 = cli
	}

	v := validator.New()
	s.e.Validator = echoValidator(v.Struct)
	s.e.Debug = cfg.Debug
	s.e.HideBanner = true
	s.e.Logger.SetOutput(io.Discard)

	// Middlewares.
	// The order matters.
	s.e.Use(middleware.RequestID())
	s.e.Use(setLogger(slogger))
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.Int("status", v.Status),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.String("user_agent", v.UserAgent),
				slog.Duration("latency", v.Latency),
			}
			l := getLogger(c)
			l.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST", attrs...)
			return nil
		},
	}))

	s.registerAPIs(s.e)

	return &s, nil
}

func (s *Server) registerAPIs(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.GET("/metas", s.handlerListMetas)
	v1.POST("/metas", s.handlerRefreshMetas)
	v1.GET("/metas/:name", s.handlerGetMeta)

	v1.GET("/sources", s.handlerListSources)
	v1.POST("/sources", s.handlerReloadAllSources)
	v1.GET("/sources/:name", s.handlerGetSource)
	v1.POST("/sources/:name", s.handlerReloadSource)
	v1.DELETE("/sources/:name", s.handlerRemoveSource)
	v1.GET("/sources/:name/tail", s.handlerTailSource)
}

// Start loads the sources, schedules the metadata refresh and serves HTTP
// until rootCtx is done.
func (s *Server) Start(rootCtx context.Context) {
	l := s.logger
	ctx, cancel := context.WithCancelCause(rootCtx)
	defer cancel(context.Canceled)

	if _, err := s.reloadAllSources(ctx, l); err != nil {
		l.Error("Fail to load sources", slogErrAttr(err))
	}
	go s.refreshMetas(ctx)

	err := s.cron.AddJob(jobRefreshMetas, s.config.RefreshInterval, func() {
		s.refreshMetas(ctx)
	})
	if err != nil {
		l.Error("Fail to schedule metadata refresh", slogErrAttr(err))
		return
	}

	go func() {
		l.Info("Running HTTP server", slog.String("addr", s.config.ListenAddr))
		if err := s.e.Start(s.config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Fail to run HTTP server", slogErrAttr(err))
			cancel(err)
		}
	}()

	<-ctx.Done()
	l.Info("Stopping scheduler")
	s.cron.Stop()
	l.Info("Shutting down HTTP server")
	_ = s.e.Shutdown(context.Background())
}
