package validator

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
)

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ValidationError describes a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is the error returned by Apply when any rule fails.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, err.Field+": "+err.Message)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Has reports whether field failed at least one rule.
func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Rule is a deferred check paired with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// WithMessage replaces the rule's default message. Services use it to carry
// the exact text shown to end users.
func (r Rule) WithMessage(msg string) Rule {
	r.Error.Message = msg
	return r
}

// Apply evaluates every rule and returns ValidationErrors for the failures,
// in rule order, or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Check runs the rules like Apply and converts the first failure into a 400
// *apperror.Error carrying that rule's message.
func Check(rules ...Rule) error {
	err := Apply(rules...)
	if err == nil {
		return nil
	}
	var ve ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return apperror.BadRequest(ve[0].Message).Wrap(err)
	}
	return apperror.BadRequest(ErrValidationFailed.Error()).Wrap(err)
}

// Extract returns the ValidationErrors in err's chain, or nil.
func Extract(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
