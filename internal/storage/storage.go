package storage

import (
	"context"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/config"
)

// ObjectStorage archives bill artifacts.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte) error
}

// New returns a minio-backed client when archival is enabled and a noop otherwise.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewMinioClient(MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	})
}

type Noop struct{}

func (Noop) UploadObject(context.Context, string, []byte) error { return nil }
