package factory

import (
	"encoding/json"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/ustclug/ytail/pkg/ytailctl/globalflag"
)

type factoryImpl struct {
	*globalflag.FlagSet
}

func (f *factoryImpl) RESTClient() *resty.Client {
	return resty.New().SetBaseURL(f.Remote())
}

func (f *factoryImpl) JSONEncoder(w io.Writer) *json.Encoder {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder
}

func New(flags *globalflag.FlagSet) Factory {
	return &factoryImpl{
		FlagSet: flags,
	}
}
