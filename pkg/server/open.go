package server

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ustclug/ytail/pkg/model"
	"github.com/ustclug/ytail/pkg/s3seek"
)

var errS3NotConfigured = errors.New("s3 is not configured")

type sourceStat struct {
	size  int64
	mtime int64
}

// openSource returns a seekable view of the source's content and a function
// releasing it. Gzip-compressed files are decompressed to a temporary file
// first.
func (s *Server) openSource(ctx context.Context, src *model.Source) (io.ReadSeeker, func(), error) {
	if bucket, key, ok := s3seek.ParseURL(src.Path); ok {
		if s.s3 == nil {
			return nil, nil, errS3NotConfigured
		}
		r, err := s3seek.New(ctx, s.s3, bucket, key)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}

	content, err := os.Open(src.Path)
	if err != nil {
		return nil, nil, err
	}
	if filepath.Ext(src.Path) != ".gz" {
		return content, func() { _ = content.Close() }, nil
	}
	defer content.Close()

	fp, err := decompressGzip(content)
	if err != nil {
		return nil, nil, err
	}
	tmpfile, err := os.Open(fp)
	if err != nil {
		_ = os.Remove(fp)
		return nil, nil, err
	}
	return tmpfile, func() {
		_ = tmpfile.Close()
		_ = os.Remove(fp)
	}, nil
}

func (s *Server) statSource(ctx context.Context, src *model.Source) (*sourceStat, error) {
	if bucket, key, ok := s3seek.ParseURL(src.Path); ok {
		if s.s3 == nil {
			return nil, errS3NotConfigured
		}
		r, err := s3seek.New(ctx, s.s3, bucket, key)
		if err != nil {
			return nil, err
		}
		return &sourceStat{size: r.Size(), mtime: r.ModTime().Unix()}, nil
	}
	fi, err := os.Stat(src.Path)
	if err != nil {
		return nil, err
	}
	return &sourceStat{size: fi.Size(), mtime: fi.ModTime().Unix()}, nil
}

func decompressGzip(content io.Reader) (fp string, err error) {
	gr, err := gzip.NewReader(content)
	if err != nil {
		return "", fmt.Errorf("read gzip: %w", err)
	}
	defer gr.Close()
	tmpfile, err := os.CreateTemp("", ".ytail_source")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer func() {
		_ = tmpfile.Close()
		if err != nil {
			_ = os.Remove(tmpfile.Name())
		}
	}()
	_, err = io.Copy(tmpfile, gr)
	if err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	return tmpfile.Name(), nil
}
