package validators

import (
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var CraftsmanValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user_id", "specialty", "rating", "review_count", "verified", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"specialty": bson.M{
				"bsonType": "string",
				"enum":     model.Specialties,
			},
			"bio": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"experience": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  80,
			},
			"hourly_rate": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"location": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"city":    bson.M{"bsonType": "string"},
					"address": bson.M{"bsonType": "string"},
				},
			},
			"rating": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  5,
			},
			"rating_sum": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"review_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"verified":   bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
