// Package db manages MongoDB connections and collections.
package db

import (
	"context" // For connection timeout/cancellation
	"fmt"     // Error formatting
	"time"    // Duration for timeouts

	"go.mongodb.org/mongo-driver/v2/bson"           // Index key documents
	"go.mongodb.org/mongo-driver/v2/mongo"          // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options"  // MongoDB options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref" // MongoDB read preference
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "chater"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db holds the "users", "dialogs" and "messages" collections
	db *mongo.Database
}

// New connects to MongoDB and returns a Client bound to database name.
func New(ctx context.Context, mongoURI, name string) (*Client, error) {
	if name == "" {
		name = DefaultDatabase
	}

	// SetConnectTimeout: fail fast if MongoDB is unreachable
	opts := options.Client().
		ApplyURI(mongoURI).                 // Parse connection string
		SetConnectTimeout(10 * time.Second) // Max time to connect

	// This doesn't actually connect yet, just creates the client
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// If ping doesn't complete in 5 seconds, fail
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ping MongoDB to verify connection is working
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(name), // Lazy-loaded: created on first write
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// DialogsCollection returns the dialogs collection.
func (c *Client) DialogsCollection() *mongo.Collection {
	return c.db.Collection("dialogs")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// Drop removes the whole database. Tests use it to start clean.
func (c *Client) Drop(ctx context.Context) error {
	return c.db.Drop(ctx)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	// ctx can have timeout if you want to force shutdown after N seconds
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores rely on for uniqueness and
// history queries.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== USERS COLLECTION INDEX =====
	// Ensures: no two users can have the same email (unique constraint)
	usersIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndexModel); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// ===== DIALOGS COLLECTION INDEXES =====
	dialogIndexes := []mongo.IndexModel{
		{
			// One private dialog per unordered pair of users
			Keys: bson.D{{Key: "party_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": "private"}),
		},
		{
			// Exactly one public dialog
			Keys: bson.D{{Key: "type", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("single_public").
				SetPartialFilterExpression(bson.M{"type": "public"}),
		},
		{
			// Used by: ListPrivateDialogs (multikey on the party array)
			Keys: bson.D{{Key: "party", Value: 1}},
		},
	}
	if _, err := c.DialogsCollection().Indexes().CreateMany(ctx, dialogIndexes); err != nil {
		return fmt.Errorf("failed to create dialog indexes: %w", err)
	}

	// ===== MESSAGES COLLECTION INDEX =====
	// Used by: History() cursor pagination, newest first within a dialog
	messagesIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "dialog", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: -1}},
	}
	if _, err := c.MessagesCollection().Indexes().CreateOne(ctx, messagesIndexModel); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
