// Package autoload initialises the global logger from LOG_* variables when
// imported.
package autoload

import (
	configx "github.com/tanpawarit/ai-support-router/pkg/config"
	logx "github.com/tanpawarit/ai-support-router/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
