// Package logging builds the zap logger shared by the dirtree commands.
package logging

import (
	"go.uber.org/zap"
)

// New returns a production logger, or a development logger when debug is set,
// tagged with the application name and version. The result also replaces
// zap's global logger.
func New(debug bool, appName, appVersion string) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	cfg.InitialFields = map[string]interface{}{
		"appName":    appName,
		"appVersion": appVersion,
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
