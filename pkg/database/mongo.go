package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/dukaan/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	MongoClient *mongo.Client
	Mongo       *mongo.Database
)

// ConnectMongo opens the catalogue database connection and verifies it
// with a ping. Call DisconnectMongo on shutdown.
func ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("database: mongo ping: %w", err)
	}

	MongoClient = client
	Mongo = client.Database(config.MongoDatabase())
	return nil
}

// DisconnectMongo closes the catalogue connection.
func DisconnectMongo(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return MongoClient.Disconnect(ctx)
}
