/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logger provides named logrus loggers. All loggers share one
// configuration; output goes to stdout, a rotating file, or both.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds the logging configuration.
type Config struct {
	// Level: trace, debug, info, warn, error
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format: json, text
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	// Output: file, stdout, both
	Output string `env:"LOG_OUTPUT" envDefault:"stdout" validate:"oneof=file stdout both"`

	File       string `env:"LOG_FILE" envDefault:"./logs/eventpivot.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"` // days
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// DefaultConfig returns the configuration used when Init was never called.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		File:       "./logs/eventpivot.log",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   true,
	}
}

var (
	mu     sync.Mutex
	config *Config
	base   *logrus.Logger
	named  = make(map[string]*logrus.Entry)
)

// Init configures logging. Loggers handed out before Init keep working and
// pick up the new configuration.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	mu.Lock()
	defer mu.Unlock()

	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	config = cfg
	if base == nil {
		base = l
		return nil
	}
	// Reconfigure in place so existing entries follow.
	base.SetLevel(l.Level)
	base.SetFormatter(l.Formatter)
	base.SetOutput(l.Out)
	return nil
}

// GetLogger returns the logger for a component. Every entry carries the
// component name.
func GetLogger(name string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if base == nil {
		config = DefaultConfig()
		l, err := newLogger(config)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize logger: %v", err))
		}
		base = l
	}
	if entry, ok := named[name]; ok {
		return entry
	}
	entry := base.WithField("component", name)
	named[name] = entry
	return entry
}

func newLogger(cfg *Config) (*logrus.Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				s := strings.Split(f.Function, ".")
				return s[len(s)-1], fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
			},
		})
	}

	var writers []io.Writer
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if cfg.Output != "file" {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l, nil
}
