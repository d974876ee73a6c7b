package validators

import "go.mongodb.org/mongo-driver/bson"

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "craftsman_id", "customer_id", "rating", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"booking_id":   bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"craftsman_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"customer_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"rating": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},
			"comment":    bson.M{"bsonType": "string", "maxLength": 1000},
			"response":   bson.M{"bsonType": "string", "maxLength": 1000},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
