package source

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/ytailctl/cmd/util"
	"github.com/ustclug/ytail/pkg/ytailctl/factory"
)

type tailOptions struct {
	name  string
	lines int
}

func (o *tailOptions) Run(cmd *cobra.Command, f factory.Factory) error {
	resp, err := f.RESTClient().R().
		SetDoNotParseResponse(true).
		SetPathParam("name", o.name).
		SetQueryParam("n", strconv.Itoa(o.lines)).
		Get("api/v1/sources/{name}/tail")
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return util.DecodeError(resp.Status(), body)
	}
	_, err = io.Copy(cmd.OutOrStdout(), body)
	return err
}

func NewCmdSourceTail(f factory.Factory) *cobra.Command {
	o := tailOptions{}
	cmd := &cobra.Command{
		Use:     "tail SOURCE",
		Short:   "Print the last lines of the given source",
		Example: "  ytailctl source tail syslog -n 20",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.name = args[0]
			return o.Run(cmd, f)
		},
	}
	cmd.Flags().IntVarP(&o.lines, "lines", "n", 10, "Output the last N lines, 0 for the whole file")
	return cmd
}
