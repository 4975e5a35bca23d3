package source

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/cmd/util"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

type rmOptions struct {
	name string
}

func (o *rmOptions) Run(cmd *cobra.Command, f factory.Factory) error {
	var errMsg echo.HTTPError
	resp, err := f.RESTClient().R().
		SetError(&errMsg).
		SetPathParam("name", o.name).
		Delete("api/v1/sources/{name}")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return util.ResponseError(resp, &errMsg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted from database: <%s>\n", o.name)
	return nil
}

func NewCmdSourceRm(f factory.Factory) *cobra.Command {
	o := rmOptions{}
	return &cobra.Command{
		Use:     "rm SOURCE",
		Short:   "Remove source from database",
		Example: "  ytailctl source rm SOURCE",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.name = args[0]
			return o.Run(cmd, f)
		},
	}
}
