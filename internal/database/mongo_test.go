package database

import (
	"testing"

	"github.com/gdg-garage/crawl-registration-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter_IDMatchesHexAndObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	f := mongoFilter(store.Filter{store.IDField: oid.Hex(), "crawlDate": "tuesday"})

	in, ok := f[store.IDField].(bson.M)["$in"].([]any)
	if !ok {
		t.Fatalf("expected $in on _id, got %#v", f[store.IDField])
	}
	if len(in) != 2 {
		t.Fatalf("expected hex and ObjectID candidates, got %v", in)
	}
	if in[0] != oid.Hex() || in[1] != oid {
		t.Errorf("unexpected candidates: %v", in)
	}
	if f["crawlDate"] != "tuesday" {
		t.Errorf("expected plain equality for crawlDate, got %v", f["crawlDate"])
	}
}

func TestMongoFilter_NonHexIDAndSetMembership(t *testing.T) {
	f := mongoFilter(store.Filter{store.IDField: "loc-1", "crawlLocation": store.In{"a", "b"}})

	in := f[store.IDField].(bson.M)["$in"].([]any)
	if len(in) != 1 || in[0] != "loc-1" {
		t.Errorf("expected only the raw string candidate, got %v", in)
	}
	members := f["crawlLocation"].(bson.M)["$in"].([]any)
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %v", members)
	}
}
