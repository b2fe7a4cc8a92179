// internal/app/bootstrap/storage.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// newBlobStore builds the audio blob store from config: local disk for
// development and single-node deployments, S3 for production.
func newBlobStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("local storage init: %w", err)
		}
		logger.Info("using local blob storage",
			zap.String("path", appCfg.StorageLocalPath))
		return store, nil
	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
			Prefix: appCfg.StorageS3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage init: %w", err)
		}
		logger.Info("using S3 blob storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}
}
