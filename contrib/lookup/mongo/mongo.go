package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/railmitra/railmitra/lookup"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds MongoDB connection settings for the lookup loader.
type Config struct {
	URI                string
	Database           string
	StationsCollection string
	TrainsCollection   string
}

// DefaultConfig returns default MongoDB lookup configuration.
func DefaultConfig() *Config {
	return &Config{
		URI:                "mongodb://localhost:27017",
		Database:           "railmitra",
		StationsCollection: "stations_lookup",
		TrainsCollection:   "trains_lookup",
	}
}

// entry is the stored shape: one document per normalized name.
type entry struct {
	Name string `bson:"name"`
	Code string `bson:"code"`
}

// Load reads the offline-built lookup collections once and returns immutable
// Tables. The client is disconnected before returning.
func Load(ctx context.Context, config *Config) (*lookup.Tables, error) {
	if config == nil {
		config = DefaultConfig()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(config.Database)
	stations, err := loadCollection(ctx, db, config.StationsCollection)
	if err != nil {
		return nil, err
	}
	trains, err := loadCollection(ctx, db, config.TrainsCollection)
	if err != nil {
		return nil, err
	}

	return lookup.New(stations, trains), nil
}

func loadCollection(ctx context.Context, db *mongo.Database, name string) (map[string]string, error) {
	cursor, err := db.Collection(name).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]string)
	for cursor.Next(ctx) {
		var e entry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode entry in %s: %w", name, err)
		}
		out[e.Name] = e.Code
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", name, err)
	}
	return out, nil
}
