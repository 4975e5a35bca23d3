package globalflag

import (
	"github.com/spf13/pflag"
)

const DefaultRemote = "http://127.0.0.1:9998/"

type FlagSet struct {
	remote string
}

// Remote returns the base URL of ytaild.
func (f *FlagSet) Remote() string {
	return f.remote
}

func (f *FlagSet) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.remote, "remote", "r", DefaultRemote, "Remote address")
}

func New() *FlagSet {
	return &FlagSet{remote: DefaultRemote}
}
