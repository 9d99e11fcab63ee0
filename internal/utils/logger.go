package utils

import "go.uber.org/zap"

// NewLogger returns a console logger with debug output for local runs
// and a sampled JSON logger when production is set.
func NewLogger(production bool) *zap.Logger {
	build := zap.NewDevelopment
	if production {
		build = zap.NewProduction
	}
	log, err := build()
	if err != nil {
		panic(err)
	}
	return log
}
