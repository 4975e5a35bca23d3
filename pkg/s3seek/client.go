package s3seek

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type ClientOptions struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewClient builds an S3 client. Non-AWS endpoints (MinIO, Ceph RGW, ...) are
// addressed path-style.
func NewClient(ctx context.Context, opts ClientOptions) (*awss3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if len(opts.AccessKey) > 0 {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	endpoint := opts.Endpoint
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if len(endpoint) == 0 {
			return
		}
		o.BaseEndpoint = &endpoint
		o.UsePathStyle = !strings.Contains(endpoint, "amazonaws.com")
	}), nil
}
