// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/mergejoin/pkg/logutil"
	"github.com/matrixorigin/mergejoin/pkg/sql/colexec/mergejoin"
)

// Config is the toml config of the bench tool.
type Config struct {
	Log  logutil.LogConfig `toml:"log"`
	Join mergejoin.Config  `toml:"join"`

	// Kind inner or left
	Kind string `toml:"kind"`
	// Strictness all, any or semi
	Strictness string `toml:"strictness"`
	// BatchRows rows of a batch read from the input
	BatchRows int `toml:"batch-rows"`
	// Workers size of the probe pool
	Workers int `toml:"workers"`
}

func defaultConfig() Config {
	return Config{
		Log: logutil.LogConfig{
			Level:  "info",
			Format: "console",
		},
		Join:       mergejoin.DefaultConfig(),
		Kind:       "inner",
		Strictness: "all",
		BatchRows:  8192,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, cfg.Join.Validate()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Join.Validate()
}

func dumpConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
