package mongo

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ParseID converts a hex document id. It returns missing for blank input and
// invalid for anything that is not a 24-character hex string, so services can
// report their own messages.
func ParseID(hex string, missing, invalid error) (bson.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return bson.ObjectID{}, missing
	}
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, invalid
	}
	return id, nil
}
