package meta

import (
	"time"

	"github.com/docker/go-units"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/api"
	"github.com/ustclug/ytail/pkg/tabwriter"
	"github.com/ustclug/ytail/pkg/ytailctl/cmd/util"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

type lsOptions struct {
	name string
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).Format(time.RFC3339)
}

func (o *lsOptions) Run(cmd *cobra.Command, f factory.Factory) error {
	var errMsg echo.HTTPError
	req := f.RESTClient().R().SetError(&errMsg)
	out := cmd.OutOrStdout()
	if len(o.name) > 0 {
		var result api.GetMetaResponse
		resp, err := req.
			SetResult(&result).
			SetPathParam("name", o.name).
			Get("api/v1/metas/{name}")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return util.ResponseError(resp, &errMsg)
		}
		return f.JSONEncoder(out).Encode(result)
	}

	var result api.ListMetasResponse
	resp, err := req.SetResult(&result).Get("api/v1/metas")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return util.ResponseError(resp, &errMsg)
	}
	tw := tabwriter.New(out)
	tw.SetHeader([]string{"name", "exists", "refreshing", "size", "mtime", "next-run"})
	for _, m := range result {
		size := ""
		if m.Exists {
			size = units.BytesSize(float64(m.Size))
		}
		tw.Append(
			m.Name,
			m.Exists,
			m.Refreshing,
			size,
			formatUnix(m.Mtime),
			formatUnix(m.NextRun),
		)
	}
	return tw.Render()
}

func NewCmdMetaLs(f factory.Factory) *cobra.Command {
	o := lsOptions{}
	return &cobra.Command{
		Use:   "ls [SOURCE]",
		Short: "List one or all metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.name = args[0]
			}
			return o.Run(cmd, f)
		},
	}
}
