package validator_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
	"github.com/dmitrymomot/socialkit/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("name", "alice"),
			validator.MaxLen("name", "alice", 10),
		)
		assert.NoError(t, err)
	})

	t.Run("collects failures in order", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("name", "  "),
			validator.Positive("amount", 0),
			validator.Currency("currency", "usd"),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)

		ve := validator.Extract(err)
		require.Len(t, ve, 2)
		assert.Equal(t, "name", ve[0].Field)
		assert.Equal(t, "amount", ve[1].Field)
		assert.True(t, ve.Has("amount"))
		assert.False(t, ve.Has("currency"))
		assert.Contains(t, err.Error(), "name: field is required")
	})
}

func TestCheck(t *testing.T) {
	t.Run("first failure becomes bad request", func(t *testing.T) {
		err := validator.Check(
			validator.Required("user", "").WithMessage("Please enter user id!"),
			validator.ObjectID("user", "").WithMessage("Invalid user id!"),
		)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		assert.Equal(t, "Please enter user id!", apperror.MessageOf(err))
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("nil when valid", func(t *testing.T) {
		err := validator.Check(validator.ObjectID("user", bson.NewObjectID().Hex()))
		assert.NoError(t, err)
	})
}

func TestRules(t *testing.T) {
	tests := []struct {
		name string
		rule validator.Rule
		ok   bool
	}{
		{"required ok", validator.Required("f", "x"), true},
		{"required blank", validator.Required("f", " \t"), false},
		{"max len counts runes", validator.MaxLen("f", "привет", 6), true},
		{"max len exceeded", validator.MaxLen("f", "abcdef", 5), false},
		{"object id ok", validator.ObjectID("f", "507f1f77bcf86cd799439011"), true},
		{"object id short", validator.ObjectID("f", "507f1f77"), false},
		{"object id not hex", validator.ObjectID("f", "zzzzzzzzzzzzzzzzzzzzzzzz"), false},
		{"non zero id", validator.NonZeroID("f", bson.NewObjectID()), true},
		{"zero id", validator.NonZeroID("f", bson.ObjectID{}), false},
		{"positive", validator.Positive("f", int64(1)), true},
		{"negative", validator.Positive("f", -5), false},
		{"one of", validator.OneOf("f", "b", "a", "b"), true},
		{"not one of", validator.OneOf("f", "c", "a", "b"), false},
		{"currency", validator.Currency("f", "EUR"), true},
		{"currency digits", validator.Currency("f", "U5D"), false},
		{"currency long", validator.Currency("f", "USDT"), false},
		{"true", validator.True("f", true, "msg"), true},
		{"false", validator.True("f", false, "msg"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.rule.Check())
		})
	}
}
