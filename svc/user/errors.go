package user

import "github.com/dmitrymomot/socialkit/pkg/apperror"

var (
	ErrUserNotFound = apperror.NotFound("User not found!")
	ErrEmptyToken   = apperror.BadRequest("Please enter push token!")
)
