package mongo

import (
	"testing"

	"medcompanion/internal/appointments/repository"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_Appointments(t *testing.T) {
	def, ok := Collections()[repository.CollectionName]
	if !ok {
		t.Fatalf("expected a definition for %s", repository.CollectionName)
	}

	var unique bool
	for _, idx := range def.Indexes {
		keys, ok := idx.Keys.(bson.D)
		if !ok || len(keys) == 0 {
			t.Fatalf("unexpected index keys %#v", idx.Keys)
		}
		if keys[0].Key == "confirmation_id" && idx.Options != nil && idx.Options.Unique != nil && *idx.Options.Unique {
			unique = true
		}
	}
	if !unique {
		t.Error("confirmation_id must have a unique index")
	}

	schema, ok := def.Validator["$jsonSchema"].(bson.M)
	if !ok {
		t.Fatal("expected a $jsonSchema validator")
	}
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatal("expected required fields")
	}
	want := map[string]bool{"confirmation_id": false, "user_id": false, "status": false, "created_at": false}
	for _, f := range required {
		if _, tracked := want[f]; tracked {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("field %s must be required", f)
		}
	}
}
