package meta

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/cmd/util"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

func NewCmdMetaRefresh(f factory.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the metadata of all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var errMsg echo.HTTPError
			resp, err := f.RESTClient().R().SetError(&errMsg).Post("api/v1/metas")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return util.ResponseError(resp, &errMsg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Successfully refreshed all metadata")
			return nil
		},
	}
}
