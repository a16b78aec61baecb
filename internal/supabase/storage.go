package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewStorageClient authenticates with the service role key. Callers own the
// object path layout; no user session reaches the storage API.
func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	if serviceRoleKey == "" {
		return nil, fmt.Errorf("service role key is required")
	}
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, map[string]string{
		"apikey": serviceRoleKey,
	})

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Upload writes data under path. Existing objects are never overwritten.
func (s *StorageClient) Upload(_ context.Context, path string, data []byte, contentType string) error {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// PublicURL is derived from the path alone; no request is made.
func (s *StorageClient) PublicURL(path string) string {
	return PublicObjectURL(s.baseURL, s.bucket, path)
}

func (s *StorageClient) Delete(_ context.Context, path string) error {
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func PublicObjectURL(baseURL, bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		strings.TrimSuffix(baseURL, "/"), bucket, path)
}
