package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/info"
	"github.com/ustclug/ytail/pkg/utils"
	"github.com/ustclug/ytail/pkg/ytailctl"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
	"github.com/ustclug/ytail/pkg/ytailctl/globalflag"
)

func main() {
	var printVersion bool
	rootCmd := &cobra.Command{
		Use:          "ytailctl",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printVersion {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info.VersionInfo())
			}
			return cmd.Help()
		},
	}
	rootCmd.Flags().BoolVarP(&printVersion, "version", "V", false, "Print version information and quit")
	flags := globalflag.New()
	flags.AddFlags(rootCmd.PersistentFlags())
	ytailctl.Register(rootCmd, factory.New(flags))
	utils.CheckError(rootCmd.Execute())
}
