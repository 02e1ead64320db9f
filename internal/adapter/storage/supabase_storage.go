package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"finlearn/internal/config"
	"finlearn/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
)

// bucketClient is the part of the storage-go client the adapter calls.
type bucketClient interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	RemoveFile(bucketId string, paths []string) ([]storage_go.FileUploadResponse, error)
}

// SupabaseStorage implements domain.ObjectStorage on one Supabase Storage bucket.
type SupabaseStorage struct {
	client  bucketClient
	baseURL string
	bucket  string
}

func NewSupabaseStorage(cfg config.StorageConfig) domain.ObjectStorage {
	base := strings.TrimRight(cfg.URL, "/")
	return newSupabaseStorage(storage_go.NewClient(base+"/storage/v1", cfg.ServiceKey, nil), base, cfg.AvatarBucket)
}

func newSupabaseStorage(client bucketClient, baseURL, bucket string) *SupabaseStorage {
	return &SupabaseStorage{client: client, baseURL: baseURL, bucket: bucket}
}

// Upload overwrites any object already stored at path. The storage-go client
// takes no context, so cancellation is only checked before the call.
func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, body io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", s.bucket, path, err)
	}
	return nil
}

// PublicURL is the unauthenticated download URL of path.
func (s *SupabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), path)
}

func (s *SupabaseStorage) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
		return fmt.Errorf("remove %v from %s: %w", paths, s.bucket, err)
	}
	return nil
}
