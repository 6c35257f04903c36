// Package logging wraps logrus the way pavelkim-tzsp_server's
// internal/logger package does, trimmed to a single console logger
// (the scheduling core has no file/pcap output modes to multiplex
// between).
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Config selects the logger's level and output format.
type Config struct {
	Level  string
	Format string // "text" or "json"
}

// Logger is a thin wrapper around *logrus.Logger giving the scheduling
// core's callers a fields-as-pairs call surface, matching the teacher
// package's Info/Warn/Error/Debug idiom.
type Logger struct {
	log *logrus.Logger
}

// New builds a Logger writing to stdout per cfg.
func New(cfg Config) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{log: log}
}

func (l *Logger) fields(kv ...interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			f[key] = kv[i+1]
		}
	}
	return f
}

// Info logs msg at info level with the given key/value pairs attached.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv...)).Info(msg)
}

// Warn logs msg at warn level. ttswitchd's miss and drop callbacks use
// this.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv...)).Warn(msg)
}

// Error logs msg at error level. ttswitchd's collision callback uses
// this.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv...)).Error(msg)
}

// Debug logs msg at debug level.
func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.log.WithFields(l.fields(kv...)).Debug(msg)
}
