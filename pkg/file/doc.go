// Package file removes stored uploads.
//
// Storage abstracts the backing store; LocalStorage confines every path to a
// base directory and S3Storage talks to S3 or an S3-compatible service.
// NewStorage picks one from Config.
//
// Cleaner is what services call when a record owning files is deleted. It
// removes an image together with its derived copies (a thumbnail under
// <dir>/thumbnails/ by default) and never fails the caller:
//
//	cleaner := file.NewCleaner(storage)
//	cleaner.DeleteImage(ctx, user.Avatar)
//	cleaner.DeleteAttachments(ctx, paths...)
package file
