package customer

import (
	"github.com/dmitrymomot/socialkit/pkg/apperror"
)

var (
	ErrMissingUserID     = apperror.BadRequest("Please enter user id!")
	ErrInvalidUserID     = apperror.BadRequest("Invalid user id!")
	ErrMissingCustomerID = apperror.BadRequest("Please enter customer id!")
	ErrInvalidCustomerID = apperror.BadRequest("Invalid customer id!")
	ErrUserNotFound      = apperror.NotFound("User not found!")
	ErrCustomerNotFound  = apperror.NotFound("Customer not found!")
	ErrCustomerExists    = apperror.Conflict("Customer already exists!")
)
