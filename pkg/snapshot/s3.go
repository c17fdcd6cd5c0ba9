package snapshot

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/hostrender/internal/config"
	"github.com/vango-dev/hostrender/internal/errors"
)

// PutObjectAPI is the part of the S3 client S3Store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads snapshots to a bucket.
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Store returns a store writing to bucket under prefix.
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Put uploads html and returns its s3:// location.
func (s *S3Store) Put(ctx context.Context, key string, html []byte) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	objKey := s.prefix + objectName(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objKey),
		Body:          bytes.NewReader(html),
		ContentLength: aws.Int64(int64(len(html))),
		ContentType:   aws.String(ContentType),
		Metadata: map[string]string{
			"snapshot-key":  key,
			"snapshot-time": s.now().UTC().Format(time.RFC3339),
			"snapshot-size": strconv.Itoa(len(html)),
		},
	})
	if err != nil {
		return "", errors.New("E140").WithDetailf("s3://%s/%s", s.bucket, objKey).Wrap(err)
	}
	return "s3://" + s.bucket + "/" + objKey, nil
}

// NewS3Client builds an S3 client from cfg. Static credentials are used
// when both halves are set, anonymous access otherwise.
func NewS3Client(cfg config.SnapshotConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		id, secret := cfg.AccessKeyID, cfg.SecretAccessKey
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     id,
				SecretAccessKey: secret,
				Source:          "hostrender config",
			}, nil
		})
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}
