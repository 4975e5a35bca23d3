package server

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/model"
)

const suffixYAML = ".yaml"

func (s *Server) getDB(c echo.Context) *gorm.DB {
	return s.db.WithContext(c.Request().Context())
}

func getRequiredParamFromEchoContext(c echo.Context, name string) (string, error) {
	val := c.Param(name)
	if len(val) == 0 {
		return "", badRequest(name + " is required")
	}
	return val, nil
}

func (s *Server) convertModelSourceMetaToGetMetaResponse(in model.SourceMeta, jobs map[string]cron.Entry) api.GetMetaResponse {
	var nextRun int64
	if job, ok := jobs[jobRefreshMetas]; ok && !job.Next.IsZero() {
		nextRun = job.Next.Unix()
	}
	return api.GetMetaResponse{
		Name:       in.Name,
		Exists:     in.Exists,
		Refreshing: s.refreshing.Has(in.Name),
		Size:       in.Size,
		Mtime:      in.Mtime,
		UpdatedAt:  in.UpdatedAt,
		NextRun:    nextRun,
	}
}

func convertModelSourcesToListResponse(sources []model.Source) api.ListSourcesResponse {
	return lo.Map(sources, func(src model.Source, _ int) api.ListSourcesResponseItem {
		return api.ListSourcesResponseItem{
			Name:        src.Name,
			Path:        src.Path,
			Description: src.Description,
		}
	})
}

func slogErrAttr(err error) slog.Attr {
	return slog.Any("err", err)
}

func bindAndValidate[T any](c echo.Context, input *T) error {
	err := c.Bind(input)
	if err != nil {
		return err
	}
	return c.Validate(input)
}

func badRequest(msg string) error {
	return &echo.HTTPError{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

func notFound(msg string) error {
	return &echo.HTTPError{
		Code:    http.StatusNotFound,
		Message: msg,
	}
}

func newHTTPError(code int, msg string) error {
	return &echo.HTTPError{
		Code:    code,
		Message: msg,
	}
}
