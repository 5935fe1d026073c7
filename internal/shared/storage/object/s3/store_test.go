package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	putBody []byte
	objects map[string]string
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.put = in
	f.putBody = data
	return &s3.PutObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "abc/report.json", want: "abc/report.json"},
		{name: "simple prefix", prefix: "reports", key: "abc/report.json", want: "reports/abc/report.json"},
		{name: "slashes trimmed", prefix: "/reports/", key: "/abc/report.json", want: "reports/abc/report.json"},
		{name: "empty key", prefix: "reports", key: "", want: "reports"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := objectKey(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("objectKey(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "us-east-1", "  ", "", ""); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestSaveWithKeyUsesSSEAndInfersContentType(t *testing.T) {
	api := &fakeS3{}
	store := newWithAPI(api, "bucket", "/exports/", "")

	n, err := store.SaveWithKey(context.Background(), "s1/timeline_chart.png", "", bytes.NewReader([]byte("png!")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	if got := aws.ToString(api.put.Key); got != "exports/s1/timeline_chart.png" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := aws.ToString(api.put.ContentType); got != "image/png" {
		t.Fatalf("unexpected content type %q", got)
	}
	if api.put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected SSE-S3, got %q", api.put.ServerSideEncryption)
	}
}

func TestSaveWithKeyUsesKMSKey(t *testing.T) {
	api := &fakeS3{}
	store := newWithAPI(api, "bucket", "", "key-1")

	if _, err := store.SaveWithKey(context.Background(), "s1/report.json", "application/json", strings.NewReader("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if api.put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(api.put.SSEKMSKeyId) != "key-1" {
		t.Fatalf("expected KMS encryption, got %q %q", api.put.ServerSideEncryption, aws.ToString(api.put.SSEKMSKeyId))
	}
	if got := aws.ToString(api.put.ContentType); got != "application/json" {
		t.Fatalf("explicit content type overridden: %q", got)
	}
}

func TestOpenReadsPrefixedKey(t *testing.T) {
	api := &fakeS3{objects: map[string]string{"exports/s1/report.json": `{"ok":true}`}}
	store := newWithAPI(api, "bucket", "exports", "")

	rc, err := store.Open(context.Background(), "s1/report.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	store := newWithAPI(&fakeS3{err: boom}, "bucket", "", "")

	if _, err := store.Open(context.Background(), "k"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if _, err := store.SaveWithKey(context.Background(), "k", "", strings.NewReader("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newWithAPI(&fakeS3{}, "bucket", "", "")
	if _, err := store.SaveWithKey(ctx, "k", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
