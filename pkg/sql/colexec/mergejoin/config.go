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

package mergejoin

import (
	"context"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
)

const (
	OverflowThrow = "throw"
	OverflowBreak = "break"

	defaultRowsInRightBlock   = 65536
	defaultMaxJoinedBlockRows = 65536
	defaultCacheCapacity      = 256 << 20
)

// Config config of a merge join
type Config struct {
	// MaxRowsInJoin max rows of the right relation kept in memory, 0 is unlimited
	MaxRowsInJoin int64 `toml:"max_rows_in_join"`
	// MaxBytesInJoin max bytes of the right relation kept in memory, 0 is unlimited.
	// It takes precedence over MaxRowsInJoin.
	MaxBytesInJoin int64 `toml:"max_bytes_in_join"`
	// JoinOverflowMode what to do when the right relation exceeds the limits.
	// [throw|break]. Default is throw.
	JoinOverflowMode string `toml:"join_overflow_mode"`
	// RowsInRightBlock rows of a right batch after sorting
	RowsInRightBlock int `toml:"rows_in_right_block"`
	// MaxJoinedBlockRows max rows of a joined batch, 0 is unlimited
	MaxJoinedBlockRows int `toml:"max_joined_block_rows"`
	// MaxFilesToMerge fan-in of the spilled run merges
	MaxFilesToMerge int `toml:"max_files_to_merge"`
	// SkipNotIntersected skip right batches by their key range
	SkipNotIntersected bool `toml:"skip_not_intersected"`
	// CacheCapacity bytes of spilled right batches cached in memory
	CacheCapacity int64 `toml:"cache_capacity"`

	Spill fileservice.Config `toml:"spill"`
}

func DefaultConfig() Config {
	return Config{
		JoinOverflowMode:   OverflowThrow,
		RowsInRightBlock:   defaultRowsInRightBlock,
		MaxJoinedBlockRows: defaultMaxJoinedBlockRows,
		MaxFilesToMerge:    defaultMaxFilesToMerge,
		SkipNotIntersected: true,
	}
}

// LoadConfig decodes the toml file at path over the default config.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, moerr.NewBadConfig(context.TODO(), "decode %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills the unset values and checks the others.
func (c *Config) Validate() error {
	ctx := context.TODO()
	if c.MaxRowsInJoin < 0 {
		return moerr.NewBadConfig(ctx, "max_rows_in_join %d is negative", c.MaxRowsInJoin)
	}
	if c.MaxBytesInJoin < 0 {
		return moerr.NewBadConfig(ctx, "max_bytes_in_join %d is negative", c.MaxBytesInJoin)
	}
	if c.JoinOverflowMode == "" {
		c.JoinOverflowMode = OverflowThrow
	}
	c.JoinOverflowMode = strings.ToLower(c.JoinOverflowMode)
	if c.JoinOverflowMode != OverflowThrow && c.JoinOverflowMode != OverflowBreak {
		return moerr.NewBadConfig(ctx, "unknown join_overflow_mode %q", c.JoinOverflowMode)
	}
	if c.RowsInRightBlock == 0 {
		c.RowsInRightBlock = defaultRowsInRightBlock
	}
	if c.RowsInRightBlock < 0 {
		return moerr.NewBadConfig(ctx, "rows_in_right_block %d is negative", c.RowsInRightBlock)
	}
	if c.MaxJoinedBlockRows < 0 {
		return moerr.NewBadConfig(ctx, "max_joined_block_rows %d is negative", c.MaxJoinedBlockRows)
	}
	if c.MaxFilesToMerge == 0 {
		c.MaxFilesToMerge = defaultMaxFilesToMerge
	}
	if c.MaxFilesToMerge < 2 {
		return moerr.NewBadConfig(ctx, "max_files_to_merge %d is less than 2", c.MaxFilesToMerge)
	}
	if c.CacheCapacity < 0 {
		return moerr.NewBadConfig(ctx, "cache_capacity %d is negative", c.CacheCapacity)
	}
	if c.SpillEnabled() {
		return c.Spill.Validate()
	}
	return nil
}

// SpillEnabled reports whether a spill storage is configured.
func (c *Config) SpillEnabled() bool {
	return c.Spill.Backend != "" || c.Spill.Path != ""
}

func (c *Config) sizeLimits() SizeLimits {
	return SizeLimits{
		MaxRows:         c.MaxRowsInJoin,
		MaxBytes:        c.MaxBytesInJoin,
		OverflowIsFatal: c.JoinOverflowMode == OverflowThrow,
	}
}

func (c *Config) cacheCapacity() int64 {
	if c.CacheCapacity > 0 {
		return c.CacheCapacity
	}
	if c.MaxBytesInJoin > 0 {
		return c.MaxBytesInJoin
	}
	return defaultCacheCapacity
}
