package snapshot

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soulinitiatives/cleanup/internal/config"
)

// --- NoopUploader Tests ---

func TestNoopUploader_Upload_IsNoOp(t *testing.T) {
	u := &NoopUploader{}
	if err := u.Upload(context.Background(), "cleanup", "/some/path"); err != nil {
		t.Errorf("NoopUploader.Upload() should not error, got %v", err)
	}
}

func TestNoopUploader_PresignedURL_ReturnsErrNotConfigured(t *testing.T) {
	u := &NoopUploader{}
	_, _, err := u.PresignedURL(context.Background(), "cleanup")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NoopUploader.PresignedURL() should return ErrNotConfigured, got %v", err)
	}
}

// --- NewUploader factory tests ---

func TestNewUploader_EmptyBucket_ReturnsNoopUploader(t *testing.T) {
	u, err := NewUploader(config.SnapshotStorageConfig{Bucket: ""})
	if err != nil {
		t.Fatalf("NewUploader() error = %v", err)
	}
	if _, ok := u.(*NoopUploader); !ok {
		t.Errorf("expected *NoopUploader, got %T", u)
	}
}

func TestNewUploader_WithBucket_ReturnsS3Uploader(t *testing.T) {
	cfg := config.SnapshotStorageConfig{
		Bucket:    "cleanup-backups",
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		UseSSL:    nil, // nil = defaults to true, scheme overrides
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		URLExpiry: config.Duration(15 * time.Minute),
		Prefix:    "backups",
	}

	u, err := NewUploader(cfg)
	if err != nil {
		t.Fatalf("NewUploader() error = %v", err)
	}

	s3u, ok := u.(*S3Uploader)
	if !ok {
		t.Fatalf("expected *S3Uploader, got %T", u)
	}
	if s3u.bucket != "cleanup-backups" || s3u.prefix != "backups" {
		t.Errorf("bucket/prefix = %q/%q", s3u.bucket, s3u.prefix)
	}
	if s3u.urlExpiry != 15*time.Minute {
		t.Errorf("urlExpiry = %v, want 15m", s3u.urlExpiry)
	}
}

// --- S3Uploader with mock client tests ---

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	uploadCalled   bool
	uploadErr      error
	presignCalled  bool
	presignURL     *url.URL
	presignErr     error
	lastBucket     string
	lastObjectName string
	lastFilePath   string
	lastExpiry     time.Duration
}

func (m *mockS3Client) FPutObject(ctx context.Context, bucket, objectName, filePath string, opts interface{}) error {
	m.uploadCalled = true
	m.lastBucket = bucket
	m.lastObjectName = objectName
	m.lastFilePath = filePath
	return m.uploadErr
}

func (m *mockS3Client) PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error) {
	m.presignCalled = true
	m.lastBucket = bucket
	m.lastObjectName = objectName
	m.lastExpiry = expiry
	if m.presignErr != nil {
		return nil, m.presignErr
	}
	if m.presignURL != nil {
		return m.presignURL, nil
	}
	u, _ := url.Parse("https://s3.example.com/" + bucket + "/" + objectName + "?presigned=true")
	return u, nil
}

func TestS3Uploader_Upload_Success(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "current.db")
	if err := os.WriteFile(filePath, []byte("test data"), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	mock := &mockS3Client{}
	u := &S3Uploader{client: mock, bucket: "cleanup-backups", prefix: "backups", urlExpiry: 15 * time.Minute}

	if err := u.Upload(context.Background(), "cleanup", filePath); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !mock.uploadCalled {
		t.Error("expected FPutObject to be called")
	}
	if mock.lastBucket != "cleanup-backups" {
		t.Errorf("bucket = %q, want %q", mock.lastBucket, "cleanup-backups")
	}
	if mock.lastObjectName != "backups/cleanup/current.db" {
		t.Errorf("objectName = %q, want %q", mock.lastObjectName, "backups/cleanup/current.db")
	}
	if mock.lastFilePath != filePath {
		t.Errorf("filePath = %q, want %q", mock.lastFilePath, filePath)
	}
}

func TestS3Uploader_Upload_Error(t *testing.T) {
	mock := &mockS3Client{uploadErr: errors.New("network timeout")}
	u := &S3Uploader{client: mock, bucket: "cleanup-backups", urlExpiry: 15 * time.Minute}

	err := u.Upload(context.Background(), "cleanup", "/path/to/file.db")
	if !errors.Is(err, mock.uploadErr) {
		t.Errorf("expected wrapped network timeout error, got %v", err)
	}
}

func TestS3Uploader_PresignedURL_Success(t *testing.T) {
	expectedURL, _ := url.Parse("https://s3.example.com/cleanup-backups/backups/cleanup/current.db?token=abc")
	mock := &mockS3Client{presignURL: expectedURL}
	fixed := time.Date(2026, 1, 16, 5, 0, 0, 0, time.UTC)
	u := &S3Uploader{
		client:    mock,
		bucket:    "cleanup-backups",
		prefix:    "backups",
		urlExpiry: 15 * time.Minute,
		now:       func() time.Time { return fixed },
	}

	urlStr, expiry, err := u.PresignedURL(context.Background(), "cleanup")
	if err != nil {
		t.Fatalf("PresignedURL() error = %v", err)
	}

	if urlStr != expectedURL.String() {
		t.Errorf("url = %q, want %q", urlStr, expectedURL.String())
	}
	if !expiry.Equal(fixed.Add(15 * time.Minute)) {
		t.Errorf("expiry = %v, want %v", expiry, fixed.Add(15*time.Minute))
	}
	if mock.lastExpiry != 15*time.Minute {
		t.Errorf("presign expiry = %v, want 15m", mock.lastExpiry)
	}
	if mock.lastObjectName != "backups/cleanup/current.db" {
		t.Errorf("objectName = %q", mock.lastObjectName)
	}
}

func TestS3Uploader_PresignedURL_Error(t *testing.T) {
	mock := &mockS3Client{presignErr: errors.New("access denied")}
	u := &S3Uploader{client: mock, bucket: "cleanup-backups", urlExpiry: 15 * time.Minute}

	if _, _, err := u.PresignedURL(context.Background(), "cleanup"); err == nil {
		t.Fatal("PresignedURL() expected error, got nil")
	}
}

func TestStripScheme(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantHost string
		wantSSL  bool
	}{
		{"bare host", "s3.example.com", "s3.example.com", true},
		{"bare host:port", "minio:9000", "minio:9000", true},
		{"https URL", "https://s3.example.com", "s3.example.com", true},
		{"http URL", "http://minio:9000", "minio:9000", false},
		{"http with port", "http://localhost:9000", "localhost:9000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ssl := true
			got := stripScheme(tt.endpoint, &ssl)
			if got != tt.wantHost {
				t.Errorf("stripScheme(%q) host = %q, want %q", tt.endpoint, got, tt.wantHost)
			}
			if ssl != tt.wantSSL {
				t.Errorf("stripScheme(%q) ssl = %v, want %v", tt.endpoint, ssl, tt.wantSSL)
			}
		})
	}
}

func TestObjectKey_Format(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"backups", "cleanup", "backups/cleanup/current.db"},
		{"", "cleanup", "cleanup/current.db"},
		{"raja-ampat/backups/", "kri", "raja-ampat/backups/kri/current.db"},
	}

	for _, tt := range tests {
		if got := objectKey(tt.prefix, tt.name); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}
