package notification

import (
	"errors"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
)

var (
	ErrMissingUserID         = apperror.BadRequest("Please enter user id!")
	ErrInvalidUserID         = apperror.BadRequest("Invalid user id!")
	ErrMissingNotificationID = apperror.BadRequest("Please enter notification id!")
	ErrInvalidNotificationID = apperror.BadRequest("Invalid notification id!")
	ErrMissingType           = apperror.BadRequest("Please enter notification type!")
	ErrInvalidReference      = apperror.BadRequest("Invalid message or messenger id!")
	ErrUserNotFound          = apperror.NotFound("User not found!")
	ErrNotificationNotFound  = apperror.NotFound("Notification not found!")
)

// Delivery plan construction errors. These indicate a programming mistake in
// the caller, not bad user input.
var (
	ErrInvalidPlan      = errors.New("notification: invalid delivery plan")
	ErrNoChannels       = errors.New("notification: plan has no channels")
	ErrDuplicateChannel = errors.New("notification: channel listed twice")
	ErrInvalidTarget    = errors.New("notification: target is empty")
	ErrPushTitle        = errors.New("notification: push requires a title")
	ErrRealtimeEvent    = errors.New("notification: realtime requires an event name")
	ErrRecordType       = errors.New("notification: record requires a type")
	ErrRecordOnGroup    = errors.New("notification: record for a group target needs a user")

	ErrDeliveryFailed = errors.New("notification: delivery failed")
)
