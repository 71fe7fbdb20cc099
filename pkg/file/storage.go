package file

import (
	"context"
	"fmt"
)

// Storage is the subset of a file store the backend needs: uploaded files
// are written by the upload service and only removed here.
type Storage interface {
	// Delete removes one file. It returns an error wrapping ErrFileNotFound
	// when nothing exists at path.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) bool
}

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the storage driver.
type Config struct {
	Driver   string `env:"FILES_DRIVER" envDefault:"local"`
	LocalDir string `env:"FILES_LOCAL_DIR" envDefault:"./uploads"`

	S3Bucket         string `env:"FILES_S3_BUCKET"`
	S3Region         string `env:"FILES_S3_REGION"`
	S3AccessKeyID    string `env:"FILES_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"FILES_S3_SECRET_KEY"`
	S3Endpoint       string `env:"FILES_S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"FILES_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// NewStorage builds the driver named by cfg.Driver.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStorage(cfg.LocalDir)
	case DriverS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			AccessKeyID:    cfg.S3AccessKeyID,
			SecretKey:      cfg.S3SecretKey,
			Endpoint:       cfg.S3Endpoint,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
