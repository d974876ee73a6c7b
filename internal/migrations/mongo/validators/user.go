package validators

import (
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "email", "password_hash", "role", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},
			"password_hash": bson.M{"bsonType": "string"},
			"phone":         bson.M{"bsonType": "string"},
			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					string(model.RoleCustomer),
					string(model.RoleCraftsman),
					string(model.RoleAdmin),
				},
			},
			"avatar":     bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
