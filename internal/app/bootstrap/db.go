// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	memostore "github.com/kdawg1232/memoserver/internal/app/store/memos"
	"github.com/kdawg1232/memoserver/internal/app/store/oauthstate"
	"github.com/kdawg1232/memoserver/internal/app/system/changefeed"
	"github.com/kdawg1232/memoserver/internal/app/system/indexes"
	"github.com/kdawg1232/memoserver/internal/app/system/tasks"
	"github.com/kdawg1232/memoserver/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and builds the backend
// dependency bundle (blob store, change feed) that the rest of the app
// consumes through DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	blobStore, err := newBlobStore(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		BlobStore:     blobStore,
	}
	if appCfg.ChangeFeedEnabled {
		deps.ChangeFeed = changefeed.New(db, logger)
	}
	deps.Maintenance = workers.NewRunner(logger,
		tasks.OAuthStateCleanupJob(oauthstate.New(db), logger),
		tasks.DanglingLinkSweepJob(memostore.New(db), logger),
	)
	return deps, nil
}

// EnsureSchema creates the indexes the stores rely on. All ensure steps
// are idempotent, so a restart against an already-provisioned database is
// a no-op.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := oauthstate.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure oauth_states indexes: %w", err)
	}
	return nil
}
