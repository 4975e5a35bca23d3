package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/model"
)

func TestHandlerRefreshAndListMetas(t *testing.T) {
	te := NewTestEnv(t)
	present := te.AddSource("present", "hello\nworld\n")
	require.NoError(t, te.server.db.Create(&model.Source{
		Name: "absent",
		Path: filepath.Join(te.dataDir, "absent.log"),
	}).Error)
	require.NoError(t, te.server.cron.AddJob(jobRefreshMetas, "@every 1h", func() {}))

	cli := te.RESTClient()
	resp, err := cli.R().Post("/metas")
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode())

	var metas api.ListMetasResponse
	resp, err = cli.R().SetResult(&metas).Get("/metas")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Len(t, metas, 2)
	require.Equal(t, "absent", metas[0].Name)
	require.False(t, metas[0].Exists)
	require.Equal(t, present.Name, metas[1].Name)
	require.True(t, metas[1].Exists)
	require.EqualValues(t, len("hello\nworld\n"), metas[1].Size)
	require.NotZero(t, metas[1].Mtime)
	require.NotZero(t, metas[1].NextRun)
	require.False(t, metas[1].Refreshing)

	var meta api.GetMetaResponse
	resp, err = cli.R().SetResult(&meta).SetPathParam("name", present.Name).Get("/metas/{name}")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Equal(t, metas[1], meta)

	resp, err = cli.R().SetPathParam("name", "nope").Get("/metas/{name}")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestRefreshMetaSkipsRunning(t *testing.T) {
	te := NewTestEnv(t)
	src := te.AddSource("busy", "x\n")
	te.server.refreshing.Set(src.Name, struct{}{})

	te.server.refreshMetas(context.Background())

	var count int64
	require.NoError(t, te.server.db.Model(&model.SourceMeta{}).Count(&count).Error)
	require.Zero(t, count)

	var meta api.GetMetaResponse
	require.NoError(t, te.server.db.Create(&model.SourceMeta{Name: src.Name, Exists: true}).Error)
	resp, err := te.RESTClient().R().SetResult(&meta).SetPathParam("name", src.Name).Get("/metas/{name}")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())
	require.True(t, meta.Refreshing)
}
