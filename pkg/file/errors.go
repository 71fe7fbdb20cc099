package file

import "errors"

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrFileNotFound  = errors.New("file not found")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrInvalidConfig = errors.New("invalid configuration")

	ErrFailedToDeleteFile      = errors.New("failed to delete file")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToStatPath        = errors.New("failed to stat path")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
	ErrFailedToLoadConfig      = errors.New("failed to load AWS config")

	// S3 classification
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")
)
