package ytailctl

import (
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/cmd"
	"github.com/ustclug/ytail/pkg/ytailctl/cmd/meta"
	"github.com/ustclug/ytail/pkg/ytailctl/cmd/source"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

func Register(root *cobra.Command, f factory.Factory) {
	root.AddCommand(
		cmd.NewCmdCompletion(),
		cmd.NewCmdReload(f),
		meta.NewCmdMeta(f),
		source.NewCmdSource(f),
	)
}
