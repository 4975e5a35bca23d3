package source

import (
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

func (o *lsOptions) Run(cmd *cobra.Command, f factory.Factory) error {
	var errMsg echo.HTTPError
	req := f.RESTClient().R().SetError(&errMsg)
	out := cmd.OutOrStdout()
	if len(o.name) > 0 {
		var result api.GetSourceResponse
		resp, err := req.SetResult(&result).SetPathParam("name", o.name).Get("api/v1/sources/{name}")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return util.ResponseError(resp, &errMsg)
		}
		return f.JSONEncoder(out).Encode(result)
	}

	var result api.ListSourcesResponse
	resp, err := req.SetResult(&result).Get("api/v1/sources")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return util.ResponseError(resp, &errMsg)
	}
	printer := tabwriter.New(out)
	printer.SetHeader([]string{
		"name",
		"path",
		"description",
	})
	for _, s := range result {
		printer.Append(s.Name, s.Path, s.Description)
	}
	return printer.Render()
}

func NewCmdSourceLs(f factory.Factory) *cobra.Command {
	o := lsOptions{}
	return &cobra.Command{
		Use:   "ls [SOURCE]",
		Short: "List one or all sources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.name = args[0]
			}
			return o.Run(cmd, f)
		},
	}
}
