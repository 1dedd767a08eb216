//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("ROADNET_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ROADNET_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "roadnet_test",
		Collection: "runs_" + uuid.NewString()[:8],
	})
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()

	testStore(t, s)
}
