package cmd

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/cmd/util"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

type reloadOptions struct {
	source string
}

func (o *reloadOptions) Complete(args []string) error {
	if len(args) > 0 {
		o.source = args[0]
	}
	return nil
}

func (o *reloadOptions) Run(cmd *cobra.Command, f factory.Factory) error {
	var errMsg echo.HTTPError
	req := f.RESTClient().R().SetError(&errMsg)
	u := "api/v1/sources"
	if len(o.source) > 0 {
		req.SetPathParam("name", o.source)
		u += "/{name}"
	}
	resp, err := req.Post(u)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return util.ResponseError(resp, &errMsg)
	}
	out := cmd.OutOrStdout()
	if len(o.source) > 0 {
		fmt.Fprintf(out, "Successfully reloaded: <%s>\n", o.source)
	} else {
		fmt.Fprintln(out, "Successfully reloaded all sources")
	}
	return nil
}

func NewCmdReload(f factory.Factory) *cobra.Command {
	o := reloadOptions{}
	cmd := &cobra.Command{
		Use:     "reload [SOURCE]",
		Short:   "Reload config of one or all sources",
		Example: "  ytailctl reload\n  ytailctl reload syslog",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run(cmd, f)
		},
	}
	return cmd
}
