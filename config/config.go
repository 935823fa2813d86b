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

// Package config loads the runtime configuration from the environment and
// from config/env/<EVENTPIVOT_ENV>.env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/google/eventpivot/logger"
)

// Configuration holds everything needed to run the CLI and the server.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:":8097"`

	// Limits applied before rendering.
	MaxTableCells  int `env:"MAX_TABLE_CELLS" envDefault:"20000" validate:"min=1"`
	MaxChartSeries int `env:"MAX_CHART_SERIES" envDefault:"200" validate:"min=1"`

	// DataDir holds stored responses, layouts and metadata files.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Option sets are read from MongoDB when a URI is set.
	MongoURI           string `env:"MONGODB_URI"`
	MongoDatabase      string `env:"MONGODB_DATABASE" envDefault:"eventpivot"`
	OptionSetCacheSize int    `env:"OPTION_SET_CACHE_SIZE" envDefault:"256" validate:"min=0"`

	Log logger.Config
}

// envFile returns the env file for the current environment, searching
// config/env upward from the working directory.
func envFile() string {
	name := os.Getenv("EVENTPIVOT_ENV")
	if name == "" {
		name = "development"
	}
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		envDir := filepath.Join(dir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, name+".env")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads the configuration. Explicit files are loaded first; the
// environment file is optional. Variables already set in the process
// environment win over file values.
func Load(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		if f := envFile(); f != "" {
			if _, err := os.Stat(f); err == nil {
				files = append(files, f)
			}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("failed to load env files %v: %w", files, err)
		}
	}

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
