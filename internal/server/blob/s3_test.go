package blob

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func s3types(key string) types.Object {
	return types.Object{Key: aws.String(key)}
}

func testStore() *S3Store {
	return NewS3Store(S3Config{
		RootUser:     "admin",
		RootPassword: "secretpassword",
		Bucket:       "shares",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
}

func restoreSeams(t *testing.T) {
	t.Helper()
	origPut := putObject
	origList := listObjectsV2
	origDelete := deleteObjects
	origPresign := presignGetObject
	t.Cleanup(func() {
		putObject = origPut
		listObjectsV2 = origList
		deleteObjects = origDelete
		presignGetObject = origPresign
	})
}

func TestUpload_KeyIsPrefixedByObjectID(t *testing.T) {
	restoreSeams(t)

	var gotKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotKey = *in.Key
		return &s3.PutObjectOutput{}, nil
	}

	err := testStore().Upload(context.Background(), "obj1", "stored.bin", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "obj1/stored.bin" {
		t.Fatalf("unexpected key: %q", gotKey)
	}
}

func TestUpload_WrapsError(t *testing.T) {
	restoreSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("boom")
	}

	err := testStore().Upload(context.Background(), "obj1", "f", strings.NewReader(""))
	if err == nil || !strings.Contains(err.Error(), "blob upload error") {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}

func TestPresignGet_ReturnsURL(t *testing.T) {
	restoreSeams(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != "obj1/stored.bin" {
			t.Fatalf("unexpected key: %q", *in.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed.example/" + *in.Key}, nil
	}

	url, err := testStore().PresignGet(context.Background(), "obj1", "stored.bin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "http://signed.example/obj1/stored.bin" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestRemoveAll_EmptyPrefixIsNoop(t *testing.T) {
	restoreSeams(t)

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		if *in.Prefix != "gone/" {
			t.Fatalf("unexpected prefix: %q", *in.Prefix)
		}
		return &s3.ListObjectsV2Output{}, nil
	}
	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		t.Fatal("delete must not be called for an empty prefix")
		return nil, nil
	}

	if err := testStore().RemoveAll(context.Background(), "gone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveAll_DeletesListedObjects(t *testing.T) {
	restoreSeams(t)

	keys := []string{"obj1/a", "obj1/b"}
	listCalls := 0
	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		listCalls++
		if listCalls > 1 {
			return &s3.ListObjectsV2Output{}, nil
		}
		out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
		for i := range keys {
			out.Contents = append(out.Contents, s3types(keys[i]))
		}
		return out, nil
	}

	var deleted []string
	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		for _, o := range in.Delete.Objects {
			deleted = append(deleted, *o.Key)
		}
		return &s3.DeleteObjectsOutput{}, nil
	}

	if err := testStore().RemoveAll(context.Background(), "obj1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 2 || deleted[0] != "obj1/a" || deleted[1] != "obj1/b" {
		t.Fatalf("unexpected deletions: %v", deleted)
	}
}

func TestRemoveAll_ListErrorIsWrapped(t *testing.T) {
	restoreSeams(t)

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return nil, errors.New("down")
	}

	err := testStore().RemoveAll(context.Background(), "obj1")
	if err == nil || !strings.Contains(err.Error(), "blob list error") {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}
