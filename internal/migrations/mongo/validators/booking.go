package validators

import (
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer_id",
			"craftsman_id",
			"service",
			"scheduled_at",
			"duration",
			"state",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"craftsman_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"service": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"scheduled_at": bson.M{"bsonType": "date"},

			"duration": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  24,
			},

			"state": bson.M{
				"bsonType": "string",
				"enum":     bookingStates(),
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"payment_intent": bson.M{"bsonType": "string"},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

func bookingStates() []string {
	out := make([]string, 0, len(model.BookingStates))
	for _, s := range model.BookingStates {
		out = append(out, string(s))
	}
	return out
}
