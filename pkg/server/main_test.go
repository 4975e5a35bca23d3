package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ustclug/ytail/pkg/cron"
	"github.com/ustclug/ytail/pkg/model"
	"github.com/ustclug/ytail/pkg/tail"
	testutils "github.com/ustclug/ytail/test/utils"
)

type TestEnv struct {
	t       *testing.T
	httpSrv *httptest.Server
	server  *Server
	dataDir string
}

func (t *TestEnv) RESTClient() *resty.Client {
	return resty.New().SetBaseURL(t.httpSrv.URL + "/api/v1")
}

func (t *TestEnv) RandomString() string {
	var buf [6]byte
	_, _ = rand.Read(buf[:])
	suffix := base64.RawURLEncoding.EncodeToString(buf[:])
	return t.t.Name() + suffix
}

// WriteSourceFile writes content to a file under the data dir and returns its path.
func (t *TestEnv) WriteSourceFile(name, content string) string {
	p := filepath.Join(t.dataDir, name)
	testutils.WriteFile(t.t, p, content)
	return p
}

// AddSource registers a Source backed by a new file holding content.
func (t *TestEnv) AddSource(name, content string) model.Source {
	src := model.Source{
		Name: name,
		Path: t.WriteSourceFile(name+".log", content),
	}
	require.NoError(t.t, t.server.db.Create(&src).Error)
	return src
}

func NewTestEnv(t *testing.T) *TestEnv {
	slogger := newSlogger(os.Stderr, true, slog.LevelInfo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	v := validator.New()
	e.Validator = echoValidator(v.Struct)

	dbFile, err := os.CreateTemp("", "ytaild*.db")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbFile.Close()
		_ = os.Remove(dbFile.Name())
	})
	db, err := gorm.Open(sqlite.Open(dbFile.Name()), &gorm.Config{
		QueryFields:            true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.AutoMigrate(db))

	c := cron.New()
	t.Cleanup(c.Stop)

	s := &Server{
		e:          e,
		db:         db,
		cron:       c,
		logger:     slogger,
		refreshing: cmap.New[struct{}](),
		config: &Config{
			SourceConfigDir: []string{t.TempDir()},
			LineLengthGuess: tail.DefaultLineLengthGuess,
			MaxTailMemory:   DefaultConfig.MaxTailMemory,
			RefreshInterval: DefaultConfig.RefreshInterval,
		},
	}
	s.e.Use(setLogger(slogger))
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := getLogger(c)
			l.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST", slog.Int("status", v.Status))
			return nil
		},
	}))
	s.registerAPIs(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &TestEnv{
		t:       t,
		httpSrv: srv,
		server:  s,
		dataDir: t.TempDir(),
	}
}
