package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/model"
	testutils "github.com/ustclug/ytail/test/utils"
)

func TestHandlerListSources(t *testing.T) {
	te := NewTestEnv(t)
	require.NoError(t, te.server.db.Create([]model.Source{
		{
			Name: "b-" + te.RandomString(),
			Path: "/var/log/2",
		},
		{
			Name: "a-" + te.RandomString(),
			Path: "/var/log/1",
		},
	}).Error)

	var sources api.ListSourcesResponse
	cli := te.RESTClient()
	resp, err := cli.R().SetResult(&sources).Get("/sources")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())

	require.Len(t, sources, 2)
	require.EqualValues(t, "/var/log/2", sources[1].Path)
}

func TestHandlerGetAndRemoveSource(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	te.AddSource(name, "x\n")
	require.NoError(t, te.server.db.Create(&model.SourceMeta{Name: name, Exists: true}).Error)

	cli := te.RESTClient()
	var src api.GetSourceResponse
	resp, err := cli.R().SetResult(&src).SetPathParam("name", name).Get("/sources/{name}")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Equal(t, name, src.Name)
	require.NotZero(t, src.CreatedAt)

	resp, err = cli.R().SetPathParam("name", name).Delete("/sources/{name}")
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = cli.R().SetPathParam("name", name).Get("/sources/{name}")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode())

	var count int64
	require.NoError(t, te.server.db.Model(&model.SourceMeta{}).Where("name = ?", name).Count(&count).Error)
	require.Zero(t, count)
}

func TestHandlerReloadAllSources(t *testing.T) {
	te := NewTestEnv(t)
	configDir := te.server.config.SourceConfigDir[0]
	te.server.config.SourceConfigDir = []string{"/no/such/dir", configDir}

	for i := 0; i < 2; i++ {
		testutils.WriteFile(
			t,
			filepath.Join(configDir, fmt.Sprintf("src%d.yaml", i)),
			fmt.Sprintf(`
name: src%d
path: /var/log/src%d.log
lineLengthGuess: 80
`, i, i),
		)
	}
	require.NoError(t, te.server.db.Create(&model.Source{Name: "stale", Path: "/gone"}).Error)

	cli := te.RESTClient()
	resp, err := cli.R().Post("/sources")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())

	var sources []model.Source
	require.NoError(t, te.server.db.Order("name").Find(&sources).Error)
	require.Len(t, sources, 2)
	require.Equal(t, "src0", sources[0].Name)
	require.Equal(t, 80, sources[1].LineLengthGuess)

	// A broken config is reported and nothing is removed.
	testutils.WriteFile(t, filepath.Join(configDir, "broken.yaml"), "path: [")
	resp, err = cli.R().Post("/sources")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode())
	require.NoError(t, te.server.db.Find(&sources).Error)
	require.Len(t, sources, 2)
}

func TestHandlerRemoveSourceMetaFailure(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	te.AddSource(name, "x\n")
	require.NoError(t, te.server.db.Migrator().DropTable(&model.SourceMeta{}))

	resp, err := te.RESTClient().R().SetPathParam("name", name).Delete("/sources/{name}")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode())
}

func TestReloadAllSourcesMetaFailure(t *testing.T) {
	te := NewTestEnv(t)
	require.NoError(t, te.server.db.Create(&model.Source{Name: "stale", Path: "/gone"}).Error)
	require.NoError(t, te.server.db.Migrator().DropTable(&model.SourceMeta{}))

	resp, err := te.RESTClient().R().Post("/sources")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode())
}

func TestHandlerReloadSource(t *testing.T) {
	te := NewTestEnv(t)
	configDir := te.server.config.SourceConfigDir[0]
	testutils.WriteFile(t, filepath.Join(configDir, "syslog.yaml"), "path: /var/log/syslog\ndescription: system log\n")
	testutils.WriteFile(t, filepath.Join(configDir, "other.yaml"), "name: mismatch\npath: /var/log/other\n")
	testutils.WriteFile(t, filepath.Join(configDir, "nopath.yaml"), "description: no path\n")

	cli := te.RESTClient()
	resp, err := cli.R().SetPathParam("name", "syslog").Post("/sources/{name}")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())

	var src model.Source
	require.NoError(t, te.server.db.Where(model.Source{Name: "syslog"}).First(&src).Error)
	require.Equal(t, "/var/log/syslog", src.Path)
	require.Equal(t, "system log", src.Description)

	for name, code := range map[string]int{
		"other":   http.StatusBadRequest,
		"nopath":  http.StatusBadRequest,
		"missing": http.StatusNotFound,
	} {
		resp, err = cli.R().SetPathParam("name", name).Post("/sources/{name}")
		require.NoError(t, err)
		require.Equal(t, code, resp.StatusCode(), "%s: %s", name, resp.Body())
	}
}

func TestHandlerTailSource(t *testing.T) {
	te := NewTestEnv(t)
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	content := sb.String()
	name := te.RandomString()
	te.AddSource(name, content)

	cli := te.RESTClient()
	get := func(n string) *http.Response {
		resp, err := cli.R().
			SetDoNotParseResponse(true).
			SetPathParam("name", name).
			SetQueryParam("n", n).
			Get("/sources/{name}/tail")
		require.NoError(t, err)
		return resp.RawResponse
	}
	readBody := func(resp *http.Response) string {
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(data)
	}

	resp := get("3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "line 997\nline 998\nline 999\n", readBody(resp))

	resp = get("0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, content, readBody(resp))

	resp = get("-1")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = readBody(resp)

	resp = get("4611686018427387904")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, content, readBody(resp))

	missing, err := cli.R().SetPathParam("name", "missing").Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, missing.StatusCode())
}

func TestHandlerTailSourceUnterminated(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	te.AddSource(name, "a\nb\nc")

	resp, err := te.RESTClient().R().
		SetPathParam("name", name).
		SetQueryParam("n", "1").
		Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Equal(t, "c\n", string(resp.Body()))
}

func TestHandlerTailSourceGzip(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	p := filepath.Join(te.dataDir, "rotated.log.1.gz")
	testutils.WriteGzipFile(t, p, "old 1\nold 2\nold 3\n")
	require.NoError(t, te.server.db.Create(&model.Source{Name: name, Path: p}).Error)

	resp, err := te.RESTClient().R().
		SetPathParam("name", name).
		SetQueryParam("n", "2").
		Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Equal(t, "old 2\nold 3\n", string(resp.Body()))
}

func TestHandlerTailSourceMissingFile(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	require.NoError(t, te.server.db.Create(&model.Source{Name: name, Path: filepath.Join(te.dataDir, "nope.log")}).Error)

	resp, err := te.RESTClient().R().SetPathParam("name", name).Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestHandlerTailSourceMemoryLimit(t *testing.T) {
	te := NewTestEnv(t)
	te.server.config.MaxTailMemory = 1024
	name := te.RandomString()
	te.AddSource(name, strings.Repeat("w", 4096)+"\n"+strings.Repeat("w", 4096)+"\n")

	resp, err := te.RESTClient().R().
		SetPathParam("name", name).
		SetQueryParam("n", "1").
		Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode(), "%s", resp.Body())
}

type memObjects map[string][]byte

func (m memObjects) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	data, ok := m[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (m memObjects) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	data, ok := m[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	var start, end int
	if _, err := fmt.Sscanf(aws.ToString(in.Range), "bytes=%d-%d", &start, &end); err != nil {
		return nil, err
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data[start : end+1]))}, nil
}

func TestHandlerTailSourceS3(t *testing.T) {
	te := NewTestEnv(t)
	name := te.RandomString()
	require.NoError(t, te.server.db.Create([]model.Source{
		{Name: name, Path: "s3://logs/app.log"},
		{Name: name + "-missing", Path: "s3://logs/none.log"},
	}).Error)

	cli := te.RESTClient()
	resp, err := cli.R().SetPathParam("name", name).SetQueryParam("n", "1").Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode())

	te.server.s3 = memObjects{"logs/app.log": []byte("first\nsecond\nthird\n")}
	resp, err = cli.R().SetPathParam("name", name).SetQueryParam("n", "2").Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess(), "Unexpected response: %s", resp.Body())
	require.Equal(t, "second\nthird\n", string(resp.Body()))

	resp, err = cli.R().SetPathParam("name", name+"-missing").Get("/sources/{name}/tail")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode())
}
