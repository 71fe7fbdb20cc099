// Package apperror defines the structured error returned by services for
// validation (400), missing entity (404) and conflict (409) failures.
//
//	if !exists {
//		return nil, apperror.NotFound("User not found!")
//	}
//
// Callers recover the status with CodeOf and the text with MessageOf.
// Errors from databases and providers are never converted; CodeOf reports
// them as 500.
package apperror
