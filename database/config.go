/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path on top of DefaultConfig. An empty
// path yields the defaults. A .env file in the working directory, if any,
// is loaded first so that the DB_* overrides applied by the factory and the
// overrides below can come from it.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("DB_LOCK_ON_ALLOCATE"); v != "" {
		cfg.IdentifierConfig.LockOnAllocate = v == "true"
	}
	if v := os.Getenv("DB_SEED_ENVIRONMENT"); v != "" {
		cfg.DataInitConfig.Environment = v
	}
	if _, ok := os.LookupEnv("DB_AUTO_SEED"); ok {
		cfg.DataInitConfig.AutoInitOnMigration = true
	}

	if strings.TrimSpace(cfg.ConnectionConfig.Type) == "" {
		return nil, fmt.Errorf("database type must not be empty")
	}
	return cfg, nil
}
