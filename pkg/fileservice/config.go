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

package fileservice

import (
	"context"
	"strings"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
)

const (
	memoryBackend = "memory"
	localBackend  = "local"
	pebbleBackend = "pebble"
)

// Config config to create spill storage
type Config struct {
	// Backend spill storage backend implementation. [memory|local|pebble]. Default is local.
	Backend string `toml:"backend"`
	// Path used to create spill storage using local or pebble as the backend
	Path string `toml:"path"`
	// Compress compresses every segment with lz4
	Compress bool `toml:"compress"`
}

func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = localBackend
	}
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case memoryBackend:
	case localBackend, pebbleBackend:
		if c.Path == "" {
			return moerr.NewBadConfig(context.TODO(), "spill.path is required by %s backend", c.Backend)
		}
	default:
		return moerr.NewBadConfig(context.TODO(), "unknown spill backend %q", c.Backend)
	}
	return nil
}

// NewTempStorage create spill storage by config
func NewTempStorage(cfg Config) (TempStorage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case memoryBackend:
		return NewMemoryFS(cfg.Compress)
	case pebbleBackend:
		return NewPebbleFS(cfg.Path, cfg.Compress)
	default:
		return NewLocalFS(cfg.Path, cfg.Compress)
	}
}
