// Package logging builds the structured logger used across rtctl.
//
// Components accept a logr.Logger; the concrete sink is zap, bridged with
// zapr. Verbose mode enables V(1) messages such as individual store requests.
package logging

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr.
func New(verbose bool) logr.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter returns a console logger writing to w.
func NewWithWriter(w io.Writer, verbose bool) logr.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	level := zapcore.InfoLevel
	if verbose {
		// logr V(1) maps to zap debug.
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zapr.NewLogger(zap.New(core))
}
