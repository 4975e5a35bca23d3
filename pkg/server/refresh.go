package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/clause"

	"github.com/ustclug/ytail/pkg/model"
)

const maxConcurrentRefresh = 5

// refreshMetas records the size and modification time of every Source.
func (s *Server) refreshMetas(ctx context.Context) {
	l := s.logger
	var sources []model.Source
	if err := s.db.WithContext(ctx).Find(&sources).Error; err != nil {
		l.Error("Fail to list Sources", slogErrAttr(err))
		return
	}
	l.Debug("Refreshing SourceMetas", slog.Int("count", len(sources)))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentRefresh)
	for _, src := range sources {
		src := src
		eg.Go(func() error {
			s.refreshMeta(egCtx, &src)
			return nil
		})
	}
	_ = eg.Wait()
}

func (s *Server) refreshMeta(ctx context.Context, src *model.Source) {
	// Skip sources whose previous refresh is still running.
	if !s.refreshing.SetIfAbsent(src.Name, struct{}{}) {
		return
	}
	defer s.refreshing.Remove(src.Name)

	l := s.logger.With(slog.String("source", src.Name))
	meta := model.SourceMeta{Name: src.Name}
	st, err := s.statSource(ctx, src)
	switch {
	case err == nil:
		meta.Exists = true
		meta.Size = st.size
		meta.Mtime = st.mtime
	case errors.Is(err, fs.ErrNotExist):
	default:
		l.Warn("Fail to stat Source", slogErrAttr(err))
		return
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&meta).Error
	if err != nil {
		l.Error("Fail to upsert SourceMeta", slogErrAttr(err))
	}
}
