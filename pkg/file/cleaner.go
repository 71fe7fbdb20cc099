package file

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/dmitrymomot/socialkit/pkg/logger"
)

// Derivative maps an original image path to the path of a derived copy.
type Derivative func(original string) string

// Thumbnail is the default derivative: <dir>/thumbnails/<name>.
func Thumbnail(original string) string {
	dir, name := path.Split(original)
	return path.Join(dir, "thumbnails", name)
}

// Cleaner deletes stored files on a best-effort basis. It never returns an
// error: a missing file is logged at debug, any other failure at warn.
type Cleaner struct {
	storage     Storage
	derivatives []Derivative
	log         *slog.Logger
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithDerivatives replaces the derived copies removed with each image.
func WithDerivatives(d ...Derivative) CleanerOption {
	return func(c *Cleaner) {
		c.derivatives = d
	}
}

func WithCleanerLogger(l *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCleaner removes files from storage. Failures are logged, never returned.
func NewCleaner(storage Storage, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		storage:     storage,
		derivatives: []Derivative{Thumbnail},
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("file"))
	return c
}

// DeleteImage removes the image at p and each of its derived copies.
func (c *Cleaner) DeleteImage(ctx context.Context, p string) {
	if strings.TrimSpace(p) == "" {
		return
	}
	c.remove(ctx, p)
	for _, d := range c.derivatives {
		c.remove(ctx, d(p))
	}
}

// DeleteAttachments removes each file in paths. Image derivatives are not
// touched; use DeleteImage for those.
func (c *Cleaner) DeleteAttachments(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		c.remove(ctx, p)
	}
}

func (c *Cleaner) remove(ctx context.Context, p string) {
	err := c.storage.Delete(ctx, p)
	switch {
	case err == nil:
		c.log.DebugContext(ctx, "file deleted", logger.Path(p))
	case errors.Is(err, ErrFileNotFound):
		c.log.DebugContext(ctx, "file already gone", logger.Path(p))
	default:
		c.log.WarnContext(ctx, "failed to delete file", logger.Path(p), logger.Error(err))
	}
}
