// Package log holds the process-wide zap logger. Components take an injected
// *zap.SugaredLogger and fall back to this one through OrDefault; the CLIs use
// the package functions directly.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

// Init replaces the process logger. Debug selects the development encoder so
// per-segment and per-stage diagnostics are readable on a terminal.
func Init(debug bool) error {
	l, err := New(debug)
	if err != nil {
		return err
	}
	base, sugar = l, l.Sugar()
	return nil
}

// New builds a logger without installing it
func New(debug bool) (*zap.Logger, error) {
	build := zap.NewProduction
	if debug {
		build = zap.NewDevelopment
	}
	l, err := build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return l, nil
}

func current() *zap.SugaredLogger {
	if sugar == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = base.Sugar()
	}
	return sugar
}

// GetZapLogger returns the unsugared logger, for adapters such as GORM's
func GetZapLogger() *zap.Logger {
	current()
	return base
}

// GetSugaredLogger returns the process logger, creating a production one on
// first use
func GetSugaredLogger() *zap.SugaredLogger {
	return current()
}

// OrDefault returns l, or the process logger when l is nil
func OrDefault(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	return current()
}

// Sync flushes buffered entries
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Info(args ...interface{}) {
	current().Info(args...)
}

func Infof(template string, args ...interface{}) {
	current().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	current().Warn(args...)
}

func Errorf(template string, args ...interface{}) {
	current().Errorf(template, args...)
}

// Fatal and Fatalf exit the process after logging
func Fatal(args ...interface{}) {
	current().Fatal(args...)
	os.Exit(1)
}

func Fatalf(template string, args ...interface{}) {
	current().Fatalf(template, args...)
	os.Exit(1)
}
