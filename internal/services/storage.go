package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

var ErrStorageDisabled = errors.New("MinIO non configuré")

// ImageStore range les images produits dans un bucket MinIO.
type ImageStore struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

func NewImageStore(client *minio.Client, bucket, endpoint string, secure bool) *ImageStore {
	return &ImageStore{client: client, bucket: bucket, endpoint: endpoint, secure: secure}
}

func (s *ImageStore) Enabled() bool {
	return s != nil && s.client != nil
}

// ObjectName : products/<id produit>/<uuid><extension>
func ObjectName(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("products", productID, uuid.NewString()+ext)
}

func (s *ImageStore) publicURL(object string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, object)
}

// Upload envoie l'image et retourne son URL publique.
func (s *ImageStore) Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("type de fichier non supporté: %s", contentType)
	}

	object := ObjectName(productID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}
	return s.publicURL(object), nil
}

// SignedURL génère une URL temporaire pour un objet du bucket (URL publique ou clé).
func (s *ImageStore) SignedURL(ctx context.Context, objectURL string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageDisabled
	}

	key := strings.TrimPrefix(objectURL, s.publicURL(""))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
