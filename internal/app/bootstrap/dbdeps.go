// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/kdawg1232/memoserver/internal/app/system/changefeed"
	"github.com/kdawg1232/memoserver/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// BlobStore holds uploaded audio clips. Local disk or S3, per config.
	BlobStore storage.Store

	// ChangeFeed tails Mongo change streams and publishes update hints to
	// SSE subscribers. Nil when change_feed_enabled is false.
	ChangeFeed *changefeed.Feed

	// Maintenance runs periodic cleanup jobs (expired OAuth states,
	// dangling group links).
	Maintenance *workers.Runner
}
