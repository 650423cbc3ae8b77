package blob

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"

	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/logging"
)

const (
	awsRoleARN              = "AWS_ROLE_ARN"
	awsWebIdentityTokenFile = "AWS_WEB_IDENTITY_TOKEN_FILE"
	awsRegion               = "AWS_REGION"
	awsDefaultRegion        = "AWS_DEFAULT_REGION"
)

// S3Config configures the S3 store.
type S3Config struct {
	// Endpoint is the S3 endpoint host, e.g. "s3.amazonaws.com".
	Endpoint string

	// Bucket is the target bucket. Must already exist.
	Bucket string

	// Secure selects TLS. On for real S3, off for local test endpoints.
	Secure bool
}

// S3Store stores objects in an S3 bucket with SSE-S3 (AES256) encryption
// requested on every put.
type S3Store struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

// NewS3Store creates an S3-backed store. Credentials come from the
// environment; IAM web identity is used when the role env vars are set.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	region := os.Getenv(awsRegion)
	if region == "" {
		region = os.Getenv(awsDefaultRegion)
	}

	creds := credentials.NewEnvAWS()
	if os.Getenv(awsWebIdentityTokenFile) != "" && os.Getenv(awsRoleARN) != "" {
		creds = credentials.NewIAM("")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Region: region,
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create s3 client")
	}

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		log:    logging.Component("blob"),
	}, nil
}

// Get returns the object at key, or ErrObjectNotFound.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %q", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" {
			return nil, errors.Wrapf(errors.ErrObjectNotFound, "object %q", key)
		}
		return nil, errors.Wrapf(err, "read object %q", key)
	}
	return data, nil
}

// Put replaces the object at key with server-side encryption.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:          contentType,
			ServerSideEncryption: encrypt.NewSSE(),
		})
	if err != nil {
		return errors.Wrapf(err, "put object %q", key)
	}

	s.log.Debug("object written", "key", key, "bytes", len(data))
	return nil
}
