// Package s3seek exposes an S3 object as an io.ReadSeeker.
//
// Every Read issues one ranged GetObject, so reading the tail of a large
// object only transfers the bytes that are asked for.
package s3seek

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the part of *s3.Client used by Reader.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Reader reads a single object. It is not safe for concurrent use.
type Reader struct {
	ctx     context.Context
	api     ObjectAPI
	bucket  string
	key     string
	size    int64
	modTime time.Time
	off     int64
}

// New looks up the size of the object. A missing object is reported as
// fs.ErrNotExist.
func New(ctx context.Context, api ObjectAPI, bucket, key string) (*Reader, error) {
	out, err := api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapNotFound(fmt.Errorf("head s3://%s/%s: %w", bucket, key, err))
	}
	return &Reader{
		ctx:     ctx,
		api:     api,
		bucket:  bucket,
		key:     key,
		size:    aws.ToInt64(out.ContentLength),
		modTime: aws.ToTime(out.LastModified),
	}, nil
}

func wrapNotFound(err error) error {
	var (
		notFound  *types.NotFound
		noSuchKey *types.NoSuchKey
	)
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	return err
}

// Size returns the object size as reported by HeadObject.
func (r *Reader) Size() int64 {
	return r.size
}

// ModTime returns the last modification time reported by HeadObject.
func (r *Reader) ModTime() time.Time {
	return r.modTime
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(r.off+int64(len(p)), r.size)
	out, err := r.api.GetObject(r.ctx, &awss3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", r.off, end-1)),
	})
	if err != nil {
		return 0, wrapNotFound(fmt.Errorf("get s3://%s/%s: %w", r.bucket, r.key, err))
	}
	defer out.Body.Close()
	n, err := io.ReadFull(out.Body, p[:end-r.off])
	r.off += int64(n)
	return n, err
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.off + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, errors.New("s3seek: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("s3seek: negative position")
	}
	r.off = abs
	return abs, nil
}

// ParseURL splits s3://bucket/key. ok is false for anything else.
func ParseURL(raw string) (bucket, key string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" || len(u.Host) == 0 {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if len(key) == 0 {
		return "", "", false
	}
	return u.Host, key, true
}
