package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"gorm.io/gorm/clause"
	"sigs.k8s.io/yaml"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/model"
	"github.com/ustclug/ytail/pkg/tail"
	"github.com/ustclug/ytail/pkg/utils"
)

func (s *Server) handlerListSources(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	var sources []model.Source
	err := s.getDB(c).
		Select("name", "path", "description").
		Order("name").
		Find(&sources).Error
	if err != nil {
		const msg = "Fail to list Sources"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	return c.JSON(http.StatusOK, convertModelSourcesToListResponse(sources))
}

func (s *Server) findSource(c echo.Context, l *slog.Logger, name string) (*model.Source, error) {
	var src model.Source
	res := s.getDB(c).
		Where(model.Source{
			Name: name,
		}).
		Limit(1).
		Find(&src)
	if res.Error != nil {
		const msg = "Fail to get Source"
		l.Error(msg, slogErrAttr(res.Error))
		return nil, newHTTPError(http.StatusInternalServerError, msg)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Source not found")
	}
	return &src, nil
}

func (s *Server) handlerGetSource(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	name, err := getRequiredParamFromEchoContext(c, "name")
	if err != nil {
		return err
	}
	src, err := s.findSource(c, l, name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.GetSourceResponse{
		Name:            src.Name,
		Path:            src.Path,
		Description:     src.Description,
		LineLengthGuess: src.LineLengthGuess,
		CreatedAt:       src.CreatedAt,
		UpdatedAt:       src.UpdatedAt,
	})
}

func (s *Server) handlerRemoveSource(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	name, err := getRequiredParamFromEchoContext(c, "name")
	if err != nil {
		return err
	}

	db := s.getDB(c)
	err = db.Where(model.Source{Name: name}).Delete(&model.Source{}).Error
	if err != nil {
		const msg = "Fail to delete Source"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	err = db.Where(model.SourceMeta{Name: name}).Delete(&model.SourceMeta{}).Error
	if err != nil {
		const msg = "Fail to delete SourceMeta"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}

	return c.NoContent(http.StatusNoContent)
}

// loadSource reads file from every dir in turn; later dirs override the
// fields set by earlier ones.
func (s *Server) loadSource(dirs []string, file string) (*model.Source, error) {
	var (
		src   model.Source
		found bool
	)
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		found = true
		err = yaml.Unmarshal(data, &src)
		if err != nil {
			return nil, badRequest(fmt.Sprintf("%s: %s", file, err))
		}
	}
	if !found {
		return nil, notFound(fmt.Sprintf("File not found: %q", file))
	}
	if len(src.Name) == 0 {
		src.Name = strings.TrimSuffix(file, suffixYAML)
	}
	if err := s.e.Validator.Validate(&src); err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *Server) upsertSource(ctx context.Context, src *model.Source) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(src).Error
}

func listSourceConfigs(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		if !utils.DirExists(dir) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), suffixYAML) {
				files = append(files, e.Name())
			}
		}
	}
	files = lo.Uniq(files)
	sort.Strings(files)
	return files, nil
}

// reloadAllSources syncs the database with the config dirs. Sources whose
// config vanished are removed, unless some config failed to load.
func (s *Server) reloadAllSources(ctx context.Context, logger *slog.Logger) (int, error) {
	dirs := s.config.SourceConfigDir
	files, err := listSourceConfigs(dirs)
	if err != nil {
		return 0, err
	}

	var (
		loaded []string
		errs   []error
	)
	for _, file := range files {
		l := logger.With(slog.String("config", file))
		src, err := s.loadSource(dirs, file)
		if err == nil {
			err = s.upsertSource(ctx, src)
		}
		if err != nil {
			l.Error("Fail to load Source", slogErrAttr(err))
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}
		l.Debug("Source loaded", slog.String("source", src.Name))
		loaded = append(loaded, src.Name)
	}
	if len(errs) > 0 {
		return len(loaded), errors.Join(errs...)
	}

	var existing []string
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Source{}).Pluck("name", &existing).Error; err != nil {
		return len(loaded), err
	}
	toDelete := lo.Without(existing, loaded...)
	if len(toDelete) > 0 {
		logger.Info("Removing Sources", slog.Any("sources", toDelete))
		if err := db.Where("name IN ?", toDelete).Delete(&model.Source{}).Error; err != nil {
			return len(loaded), err
		}
		if err := db.Where("name IN ?", toDelete).Delete(&model.SourceMeta{}).Error; err != nil {
			logger.Error("Fail to delete SourceMetas", slogErrAttr(err))
			return len(loaded), err
		}
	}
	return len(loaded), nil
}

func (s *Server) handlerReloadAllSources(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	n, err := s.reloadAllSources(c.Request().Context(), l)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return badRequest(err.Error())
		}
		const msg = "Fail to reload Sources"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	l.Info("Sources reloaded", slog.Int("count", n))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlerReloadSource(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	name, err := getRequiredParamFromEchoContext(c, "name")
	if err != nil {
		return err
	}
	src, err := s.loadSource(s.config.SourceConfigDir, name+suffixYAML)
	if err != nil {
		return err
	}
	if src.Name != name {
		return badRequest(fmt.Sprintf("Source name %q does not match file %q", src.Name, name+suffixYAML))
	}
	if err := s.upsertSource(c.Request().Context(), src); err != nil {
		const msg = "Fail to save Source"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlerTailSource(c echo.Context) error {
	l := getLogger(c)
	l.Debug("Invoked")

	name, err := getRequiredParamFromEchoContext(c, "name")
	if err != nil {
		return err
	}
	var req api.GetSourceTailRequest
	err = bindAndValidate(c, &req)
	if err != nil {
		return err
	}
	src, err := s.findSource(c, l, name)
	if err != nil {
		return err
	}
	content, release, err := s.openSource(c.Request().Context(), src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(fmt.Sprintf("No such file: %q", src.Path))
		}
		const msg = "Fail to open Source"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
	defer release()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	w := newFlushWriter(resp)
	if req.N == 0 {
		_, err = io.Copy(w, content)
		return err
	}

	guess := s.config.LineLengthGuess
	if src.LineLengthGuess > 0 {
		guess = src.LineLengthGuess
	}
	t := tail.New(content, req.N,
		tail.WithLineLengthGuess(guess),
		tail.WithMemoryLimit(s.config.MaxTailMemory),
		tail.WithLogger(l),
	)
	_, err = t.WriteTo(w)
	if err == nil {
		stats := t.Stats()
		l.Debug("Tail written", slog.Int("loads", stats.Loads), slog.Int64("bytes_loaded", stats.BytesLoaded))
		return nil
	}
	if resp.Committed {
		// The status line is already out; all that is left is to log.
		l.Error("Fail to write tail", slogErrAttr(err))
		return nil
	}
	switch {
	case errors.Is(err, tail.ErrOutOfMemory):
		return newHTTPError(http.StatusRequestEntityTooLarge, "Requested lines exceed the memory limit")
	case errors.Is(err, tail.ErrInvalidArgument):
		return badRequest(err.Error())
	default:
		const msg = "Fail to read Source"
		l.Error(msg, slogErrAttr(err))
		return newHTTPError(http.StatusInternalServerError, msg)
	}
}
