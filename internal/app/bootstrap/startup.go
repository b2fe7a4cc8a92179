// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. The
// change feed worker begins tailing here so SSE subscribers get hints from
// the first request onward.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.ChangeFeed != nil {
		deps.ChangeFeed.Start()
		logger.Info("change feed started")
	} else {
		logger.Info("change feed disabled; clients fall back to polling")
	}
	if deps.Maintenance != nil {
		deps.Maintenance.Start()
	}
	return nil
}
