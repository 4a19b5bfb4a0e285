package validators

import "go.mongodb.org/mongo-driver/bson"

var EventTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "duration", "slug", "is_active", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"name":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"duration":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 1440},
			"slug":        bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
			"description": bson.M{"bsonType": "string", "maxLength": 500},
			"color":       bson.M{"bsonType": "string"},
			"is_active":   bson.M{"bsonType": "bool"},
			"created_at":  bson.M{"bsonType": "date"},
			"updated_at":  bson.M{"bsonType": "date"},
		},
	},
}
