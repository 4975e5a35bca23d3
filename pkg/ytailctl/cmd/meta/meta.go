package meta

import (
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

func NewCmdMeta(f factory.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "List or refresh metas",
	}
	cmd.AddCommand(
		NewCmdMetaLs(f),
		NewCmdMetaRefresh(f),
	)
	return cmd
}
