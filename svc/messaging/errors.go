package messaging

import (
	"errors"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
)

var (
	ErrMissingUserID         = apperror.BadRequest("Please enter user id!")
	ErrInvalidUserID         = apperror.BadRequest("Invalid user id!")
	ErrMissingSenderID       = apperror.BadRequest("Please enter sender id!")
	ErrInvalidSenderID       = apperror.BadRequest("Invalid sender id!")
	ErrMissingRecipientID    = apperror.BadRequest("Please enter recipient id!")
	ErrInvalidRecipientID    = apperror.BadRequest("Invalid recipient id!")
	ErrMissingConversationID = apperror.BadRequest("Please enter conversation id!")
	ErrInvalidConversationID = apperror.BadRequest("Invalid conversation id!")
	ErrMissingMessageID      = apperror.BadRequest("Please enter message id!")
	ErrInvalidMessageID      = apperror.BadRequest("Invalid message id!")

	ErrEmptyMessage      = apperror.BadRequest("Please enter message text or attach a file!")
	ErrMessageTooLong    = apperror.BadRequest("Message is too long!")
	ErrInvalidAttachment = apperror.BadRequest("Invalid attachment!")
	ErrSelfMessage       = apperror.BadRequest("You can't send a message to yourself!")

	ErrConversationRejected = apperror.BadRequest("This conversation has been rejected!")
	ErrConversationLocked   = apperror.BadRequest("This conversation can no longer be changed!")
	ErrNotRecipient         = apperror.BadRequest("Only the recipient can accept or reject this conversation!")
	ErrNotParticipant       = apperror.BadRequest("You are not a participant of this conversation!")

	ErrUserNotFound         = apperror.NotFound("User not found!")
	ErrConversationNotFound = apperror.NotFound("Conversation not found!")
	ErrMessageNotFound      = apperror.NotFound("Message not found!")
)

var (
	// ErrPairConflict is returned when find-or-create keeps losing the insert
	// race for the same pair.
	ErrPairConflict = errors.New("messaging: conversation pair conflict")

	errDuplicatePair = errors.New("messaging: duplicate pair key")
)
