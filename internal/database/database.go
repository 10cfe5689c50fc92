package database

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoDatabase = "evofit"

// ConnectMongo dials MongoDB and returns the client with the database named
// in the URI path, falling back to "evofit".
func ConnectMongo(mongoURI string, log logrus.FieldLogger) (*mongo.Client, *mongo.Database, error) {
	// Atlas clusters can take a while on first connect
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	dbName := MongoDatabaseName(mongoURI)
	log.WithField("database", dbName).Info("connected to MongoDB")
	return client, client.Database(dbName), nil
}

// MongoDatabaseName extracts the database from a URI of the form
// mongodb://host/dbname?opts.
func MongoDatabaseName(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			return dbPart
		}
	}
	return defaultMongoDatabase
}
