// Package archive copies run artifacts to long-term S3 storage.
//
// Archiving is a best-effort step in reconciliation: a failed copy is a
// warning on the run, never a failure. Keys are laid out as
// <prefix>/<run-id>/<filename>.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pithecene-io/deckhand/iox"
	"github.com/pithecene-io/deckhand/types"
)

// Config holds configuration for the S3 artifact archive.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// putObjectAPI is the S3 surface the archiver needs (for testing).
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver copies artifact files into an S3 bucket.
type Archiver struct {
	config Config
	client putObjectAPI
}

// New creates an archiver using the AWS SDK default credential chain
// (env vars, shared config, IAM role).
func New(ctx context.Context, cfg Config) (*Archiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Archiver{
		config: cfg,
		client: s3.NewFromConfig(awsConfig, s3Opts...),
	}, nil
}

// newWithClient injects an S3 client (for testing).
func newWithClient(cfg Config, client putObjectAPI) *Archiver {
	return &Archiver{config: cfg, client: client}
}

// Archive copies every artifact to the bucket under the run's key
// prefix. Kinds are processed in a fixed order; the first failure
// aborts and is returned.
func (a *Archiver) Archive(ctx context.Context, runID string, paths map[types.ArtifactKind]string) error {
	kinds := make([]types.ArtifactKind, 0, len(paths))
	for kind := range paths {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		if err := a.put(ctx, runID, kind, paths[kind]); err != nil {
			return fmt.Errorf("archive %s: %w", kind, err)
		}
	}
	return nil
}

func (a *Archiver) put(ctx context.Context, runID string, kind types.ArtifactKind, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(f)

	key := path.Join(a.config.Prefix, runID, kind.Filename())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.config.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}
