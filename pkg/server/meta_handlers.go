package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/model"
)

func (s *Server) handlerListMetas(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	var metas []model.SourceMeta
	err := s.getDB(c).Order("name").Find(&metas).Error
	if err != nil {
		const msg = "Fail to list SourceMetas"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	jobs := s.cron.Jobs()
	resp := lo.Map(metas, func(meta model.SourceMeta, _ int) api.GetMetaResponse {
		return s.convertModelSourceMetaToGetMetaResponse(meta, jobs)
	})
	return c.JSON(http.StatusOK, api.ListMetasResponse(resp))
}

func (s *Server) handlerGetMeta(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	name, err := getRequiredParamFromEchoContext(c, "name")
	if err != nil {
		return err
	}

	var meta model.SourceMeta
	res := s.getDB(c).
		Where(model.SourceMeta{
			Name: name,
		}).
		Limit(1).
		Find(&meta)
	if res.Error != nil {
		const msg = "Fail to get SourceMeta"
		l.Error(msg, slogErrAttr(res.Error))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	if res.RowsAffected == 0 {
		return notFound("SourceMeta not found")
	}
	return c.JSON(http.StatusOK, s.convertModelSourceMetaToGetMetaResponse(meta, s.cron.Jobs()))
}

// handlerRefreshMetas refreshes the metadata of every Source before
// returning.
func (s *Server) handlerRefreshMetas(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	s.refreshMetas(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
