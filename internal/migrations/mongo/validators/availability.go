package validators

import "go.mongodb.org/mongo-driver/bson"

var timeOfDayPattern = "^([01][0-9]|2[0-3]):[0-5][0-9]$"

var AvailabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "timezone", "weekly_schedule", "version"},
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string"},
			"timezone": bson.M{"bsonType": "string", "minLength": 1},
			"weekly_schedule": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "is_enabled"},
					"properties": bson.M{
						"day":        bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 6},
						"is_enabled": bson.M{"bsonType": "bool"},
						"time_slots": bson.M{
							"bsonType": "array",
							"items": bson.M{
								"bsonType": "object",
								"required": []string{"start", "end"},
								"properties": bson.M{
									"start": bson.M{"bsonType": "string", "pattern": timeOfDayPattern},
									"end":   bson.M{"bsonType": "string", "pattern": timeOfDayPattern},
								},
							},
						},
					},
				},
			},
			"buffer_time_before": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"buffer_time_after":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"version":            bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"created_at":         bson.M{"bsonType": "date"},
			"updated_at":         bson.M{"bsonType": "date"},
		},
	},
}
