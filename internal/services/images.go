package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// MinIOImageStore téléverse les images produit dans un bucket MinIO.
type MinIOImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOImageStore : publicURL est la base des URLs renvoyées
// (ex. http://minio:9000).
func NewMinIOImageStore(client *minio.Client, bucket, publicURL string) *MinIOImageStore {
	return &MinIOImageStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload stocke l'image sous un nom unique pour éviter les collisions.
func (s *MinIOImageStore) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	object := fmt.Sprintf("products/%s%s", uuid.NewString(), strings.ToLower(path.Ext(name)))

	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, object), nil
}
