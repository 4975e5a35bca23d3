package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/info"
	"github.com/ustclug/ytail/pkg/server"
	"github.com/ustclug/ytail/pkg/utils"
)

func main() {
	var (
		configPath   string
		printVersion bool
	)
	cmd := &cobra.Command{
		Use:          "ytaild",
		Short:        "Serve the last lines of registered log sources over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printVersion {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info.VersionInfo())
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			s, err := server.New(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			signals := make(chan os.Signal, 2)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-signals
				cancel()
				<-signals
				os.Exit(1)
			}()
			s.Start(ctx)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "/etc/ytail/daemon.toml", "The path to config file")
	flags.BoolVarP(&printVersion, "version", "V", false, "Print version information and quit")
	utils.CheckError(cmd.Execute())
}
