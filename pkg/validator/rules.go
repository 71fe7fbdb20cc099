package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Required fails for empty or whitespace-only strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ObjectID fails unless value is a 24-character hex document id.
func ObjectID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, err := bson.ObjectIDFromHex(value)
			return err == nil
		},
		Error: ValidationError{Field: field, Message: "must be a valid id"},
	}
}

// NonZeroID fails for the zero ObjectID.
func NonZeroID(field string, value bson.ObjectID) Rule {
	return Rule{
		Check: func() bool { return !value.IsZero() },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func Positive[T Numeric](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value > 0 },
		Error: ValidationError{Field: field, Message: "must be greater than zero"},
	}
}

// OneOf fails when value is not among allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return Rule{
		Check: func() bool {
			for _, a := range allowed {
				if a == value {
					return true
				}
			}
			return false
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", allowed)},
	}
}

// Currency accepts three-letter ISO 4217 codes in either case.
func Currency(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if len(value) != 3 {
				return false
			}
			for _, r := range value {
				if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a three-letter currency code"},
	}
}

// True fails when ok is false. For conditions no named rule covers.
func True(field string, ok bool, message string) Rule {
	return Rule{
		Check: func() bool { return ok },
		Error: ValidationError{Field: field, Message: message},
	}
}
