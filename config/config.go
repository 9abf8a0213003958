/*
 * hellofs - a writable single-file FUSE filesystem
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries the mount-time options. The handler itself has no knobs;
// everything here belongs to the mount layer.
type Config struct {
	FSName     string `yaml:"fs_name" env:"HELLOFS_FS_NAME" env-default:"hellofs"`
	ReadOnly   bool   `yaml:"read_only" env:"HELLOFS_READ_ONLY" env-default:"false"`
	AllowOther bool   `yaml:"allow_other" env:"HELLOFS_ALLOW_OTHER" env-default:"false"`
	FuseDebug  bool   `yaml:"fuse_debug" env:"HELLOFS_FUSE_DEBUG" env-default:"false"`
	LogLevel   string `yaml:"log_level" env:"HELLOFS_LOG_LEVEL" env-default:"info"`
}

// Load reads the config file at path, letting HELLOFS_* environment
// variables override its values. An empty path yields environment and
// default values only.
func Load(path string) (*Config, error) {
	cfg := new(Config)

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("reading config from environment: %w", err)
		}
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}
