package validators

import (
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user_id", "type", "title", "message", "read", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":     bson.M{"bsonType": "objectId"},
			"user_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					string(model.NotificationBooking),
					string(model.NotificationReview),
					string(model.NotificationPayment),
					string(model.NotificationMessage),
					string(model.NotificationVerification),
					string(model.NotificationSystem),
				},
			},
			"title":      bson.M{"bsonType": "string", "maxLength": 200},
			"message":    bson.M{"bsonType": "string", "maxLength": 2000},
			"link":       bson.M{"bsonType": "string"},
			"read":       bson.M{"bsonType": "bool"},
			"data":       bson.M{"bsonType": "object"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
