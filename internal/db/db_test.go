package db

import (
	"context"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// These tests are integration tests and require a running MongoDB instance.
// Set MONGODB_URI in the environment before running them.

func connect(t *testing.T) *Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	c, err := New(context.Background(), uri, "chater_db_test")
	if err != nil {
		t.Fatalf("failed to connect to DB: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Drop(context.Background())
		_ = c.Close(context.Background())
	})
	return c
}

func TestNewAndCreateIndexes(t *testing.T) {
	c := connect(t)
	ctx := context.Background()

	// should be able to create indexes without error, twice
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes is not idempotent: %v", err)
	}
}

func TestUniquePartyKey(t *testing.T) {
	c := connect(t)
	ctx := context.Background()
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	dialogs := c.DialogsCollection()
	if _, err := dialogs.InsertOne(ctx, bson.M{"_id": "d1", "type": "private", "party_key": "a:b"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := dialogs.InsertOne(ctx, bson.M{"_id": "d2", "type": "private", "party_key": "a:b"})
	if !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	// public dialogs carry no party key and must not collide with each other on it
	if _, err := dialogs.InsertOne(ctx, bson.M{"_id": "p1", "type": "public"}); err != nil {
		t.Fatalf("public insert failed: %v", err)
	}
	_, err = dialogs.InsertOne(ctx, bson.M{"_id": "p2", "type": "public"})
	if !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("expected second public dialog to be rejected, got %v", err)
	}
}
