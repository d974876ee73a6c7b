package validators

import (
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

// PaymentEventValidator keys documents by their idempotency key, so _id is a
// string here rather than an ObjectId.
var PaymentEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "payment_intent", "kind", "source", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"payment_intent": bson.M{"bsonType": "string"},
			"booking_id":     bson.M{"bsonType": "string"},
			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{model.PaymentKindSucceeded, model.PaymentKindFailed, model.PaymentKindRefunded},
			},
			"source": bson.M{
				"bsonType": "string",
				"enum":     []string{model.PaymentSourceConfirm, model.PaymentSourceWebhook},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
