package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"confirmation_id",
			"user_id",
			"reason",
			"requested_date",
			"time_slot",
			"attachments",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"confirmation_id": bson.M{
				"bsonType": "string",
				"pattern":  "^APT-[A-Z0-9]{8}$",
			},

			"user_id": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  1,
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"requested_date": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"time_slot": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"attachments": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"scheduled",
					"completed",
					"cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
