package ioextract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/gnames/gn"
	"golang.org/x/sync/errgroup"
)

// Object is one stored applicant document.
type Object struct {
	Key  string
	Size int64
}

// BlobStore lists and fetches applicant documents. The production
// implementation is S3; tests substitute a local fake.
type BlobStore interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Download(ctx context.Context, key, dest string) (int64, error)
}

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store connects to the configured S3-compatible bucket. Static
// credentials apply when access keys are configured; otherwise the
// default AWS chain resolves them.
func NewS3Store(
	ctx context.Context, bcfg config.BlobConfig,
) (BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(bcfg.Region),
	}
	if bcfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				bcfg.AccessKeyID, bcfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, BlobError("configure", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if bcfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(bcfg.Endpoint)
		}
		o.UsePathStyle = bcfg.PathStyle
	})
	return &s3Store{client: client, bucket: bcfg.Bucket}, nil
}

func (s *s3Store) List(
	ctx context.Context, prefix string,
) ([]Object, error) {
	var res []Object

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, BlobError(prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			res = append(res, Object{Key: *obj.Key, Size: size})
		}
	}
	return res, nil
}

func (s *s3Store) Download(
	ctx context.Context, key, dest string,
) (int64, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, BlobError(key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, BlobError(key, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, BlobError(key, err)
	}
	defer f.Close()

	n, err := io.Copy(f, out.Body)
	if err != nil {
		return 0, BlobError(key, err)
	}
	return n, nil
}

// downloadDocuments fetches every document of the listed users into the
// user-files directory, one user_<id>/ prefix at a time with bounded
// parallelism. Files from previous runs move to a complete/ subdir
// first.
func (e *extractor) downloadDocuments(
	ctx context.Context, userIDs []int64,
) (int, int64, error) {
	if e.blob == nil {
		gn.Warn("No blob store configured; skipping document downloads")
		return 0, 0, nil
	}

	dir := e.userFilesDir()
	if err := moveToComplete(dir); err != nil {
		return 0, 0, err
	}

	var objects []Object
	for _, id := range userIDs {
		objs, err := e.blob.List(ctx, fmt.Sprintf("user_%d/", id))
		if err != nil {
			return 0, 0, err
		}
		objects = append(objects, objs...)
	}
	if len(objects) == 0 {
		return 0, 0, nil
	}

	bar := pb.StartNew(len(objects))
	defer bar.Finish()

	var bytes atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.JobsNumber)
	for _, obj := range objects {
		g.Go(func() error {
			n, err := e.blob.Download(
				gctx, obj.Key, filepath.Join(dir, obj.Key))
			if err != nil {
				return err
			}
			bytes.Add(n)
			bar.Increment()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	slog.Info("Applicant documents downloaded",
		"runID", e.runID,
		"files", len(objects),
		"size", humanize.Bytes(uint64(bytes.Load())),
	)
	return len(objects), bytes.Load(), nil
}

func (e *extractor) userFilesDir() string {
	dir := e.cfg.Extract.UserFilesDir
	if dir == "" {
		dir = filepath.Join(config.DataDir(e.cfg.HomeDir), "user_files")
	}
	return dir
}
