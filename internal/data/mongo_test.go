package data

import (
	"context"
	"os"
	"testing"

	"github.com/PaulBabatuyi/chater/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "chater_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure clean collections in case previous runs left data
	if err := c.Drop(ctx); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	return c
}

func TestMongoStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		c := setupDB(t)
		s := NewMongoStore(c)
		t.Cleanup(func() {
			_ = c.Drop(context.Background())
			_ = s.Close(context.Background())
		})
		return s
	})
}
