package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "github.com/fakturo/invoice-mailer/internal/config"
)

// ErrNotFound is returned when no document exists for a reference.
var ErrNotFound = errors.New("document not found")

// Store fetches rendered invoice documents from object storage by their
// stored reference (the S3 object key recorded on the invoice).
type Store struct {
	client *s3.Client
	bucket string
}

// New creates a document store backed by S3. Explicit credentials from the
// config win over a shared profile, which wins over the default chain.
func New(ctx context.Context, cfg appconfig.StorageConfig) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	switch {
	case cfg.AccessKeyID != "" && cfg.SecretAccessKey != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	case cfg.AWSProfile != "":
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
	}, nil
}

// NewWithClient creates a document store with an existing S3 client.
func NewWithClient(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Fetch retrieves a document by its stored reference.
func (s *Store) Fetch(ctx context.Context, reference string) ([]byte, error) {
	if reference == "" {
		return nil, fmt.Errorf("document reference is empty")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reference),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
		}
		return nil, fmt.Errorf("fetching document %s: %w", reference, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", reference, err)
	}

	return data, nil
}
