package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}
	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		return c.DeleteObjects(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Config carries the settings for the S3-compatible backend (MinIO in the
// default deployment).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements Store on an S3-compatible backend.
type S3Store struct {
	cfg S3Config
}

// NewS3Store constructs an S3Store from the given settings.
func NewS3Store(cfg S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.RootUser,     // MINIO_ROOT_USER
			s.cfg.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

func blobKey(objectID, storedName string) string {
	return fmt.Sprintf("%s/%s", objectID, storedName)
}

// Upload streams body to <objectID>/<storedName> in the configured bucket.
func (s *S3Store) Upload(ctx context.Context, objectID, storedName string, body io.Reader) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	key := blobKey(objectID, storedName)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("blob upload error: %w", err)
	}
	return nil
}

// PresignGet returns a presigned download URL valid for 15 minutes.
func (s *S3Store) PresignGet(ctx context.Context, objectID, storedName string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := blobKey(objectID, storedName)
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// RemoveAll lists and deletes every object under <objectID>/. Deleting an
// absent prefix lists nothing and succeeds, which keeps cleanup safe to
// retry after a crash between row and blob deletion.
func (s *S3Store) RemoveAll(ctx context.Context, objectID string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	prefix := objectID + "/"
	for {
		listed, err := listObjectsV2(client, ctx, &s3.ListObjectsV2Input{
			Bucket: &s.cfg.Bucket,
			Prefix: &prefix,
		})
		if err != nil {
			return fmt.Errorf("blob list error: %w", err)
		}
		if len(listed.Contents) == 0 {
			return nil
		}

		ids := make([]types.ObjectIdentifier, 0, len(listed.Contents))
		for _, obj := range listed.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = deleteObjects(client, ctx, &s3.DeleteObjectsInput{
			Bucket: &s.cfg.Bucket,
			Delete: &types.Delete{Objects: ids},
		})
		if err != nil {
			return fmt.Errorf("blob delete error: %w", err)
		}

		if listed.IsTruncated == nil || !*listed.IsTruncated {
			return nil
		}
	}
}
