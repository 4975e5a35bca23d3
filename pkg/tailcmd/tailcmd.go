// Package tailcmd implements the ytail command line.
package tailcmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/ustclug/ytail/pkg/info"
	"github.com/ustclug/ytail/pkg/tail"
)

var (
	errLinesNotPositive = errors.New("The number of lines must be positive")
	errTooManyArgs      = errors.New("too many arguments")

	legacyLines = regexp.MustCompile(`^-[0-9]+$`)
)

// NormalizeArgs rewrites the legacy "-N" form into "-n N".
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(out, args[i:]...)
		case arg == "-n" || arg == "--lines":
			out = append(out, arg)
			if i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
		case legacyLines.MatchString(arg):
			out = append(out, "-n", arg[1:])
		default:
			out = append(out, arg)
		}
	}
	return out
}

type options struct {
	lines   int
	guess   int
	verbose bool
	version bool
}

func (o *options) Run(cmd *cobra.Command, args []string) error {
	if o.version {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(info.VersionInfo())
	}
	switch len(args) {
	case 0:
		_, err := fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
		return err
	case 1:
	default:
		_, _ = fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
		return errTooManyArgs
	}
	if o.lines <= 0 {
		return errLinesNotPositive
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("Error opening file: %w", err)
	}
	defer f.Close()

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	t := tail.New(f, o.lines,
		tail.WithLineLengthGuess(o.guess),
		tail.WithLogger(logger.With(slog.String("file", args[0]))),
	)
	if _, err := t.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}
	stats := t.Stats()
	logger.Debug("Done", slog.Int("loads", stats.Loads), slog.Int64("bytes_loaded", stats.BytesLoaded))
	return nil
}

// New returns the ytail root command. Arguments should go through
// NormalizeArgs before being handed to it.
func New() *cobra.Command {
	o := options{}
	cmd := &cobra.Command{
		Use:           "ytail [-n N | -N] FILE",
		Short:         "Print the last lines of a file",
		Example:       "  ytail /var/log/syslog\n  ytail -n 20 /var/log/syslog\n  ytail -20 /var/log/syslog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.Run,
	}
	flags := cmd.Flags()
	flags.IntVarP(&o.lines, "lines", "n", 10, "Output the last N lines")
	flags.IntVar(&o.guess, "guess", tail.DefaultLineLengthGuess, "Assumed average line length in bytes")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Log every load to stderr")
	flags.BoolVarP(&o.version, "version", "V", false, "Print version information and quit")
	_ = flags.MarkHidden("guess")
	return cmd
}

// Execute runs the command with the given raw arguments.
func Execute(cmd *cobra.Command, args []string, stdout io.Writer) error {
	cmd.SetArgs(NormalizeArgs(args))
	if stdout != nil {
		cmd.SetOut(stdout)
	}
	return cmd.Execute()
}
