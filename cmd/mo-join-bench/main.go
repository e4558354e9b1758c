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
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/fileservice"
	"github.com/matrixorigin/mergejoin/pkg/logutil"
	"github.com/matrixorigin/mergejoin/pkg/sort"
	"github.com/matrixorigin/mergejoin/pkg/sql/colexec/mergejoin"
)

var (
	configFlag = flag.String("config", "", "toml config file")
	rightFlag  = flag.String("right", "", "csv file of the right relation, random rows if empty")
	leftFlag   = flag.String("left", "", "csv file of the left relation, random rows if empty")
	rowsFlag   = flag.Int("rows", 1<<20, "rows of each random relation")
	keysFlag   = flag.Int64("keys", 1<<16, "distinct keys of the random relations")
	seedFlag   = flag.Int64("seed", 0, "seed of the random relations, 0 for the current time")
	dumpFlag   = flag.Bool("dump-config", false, "print the effective config and exit")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", *configFlag, err)
		os.Exit(1)
	}
	if *dumpFlag {
		if err := dumpConfig(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "dump config: %v\n", err)
			os.Exit(1)
		}
		return
	}
	logutil.SetupMOLogger(&cfg.Log)

	stop := startCPUProfile()
	err = run(context.Background(), cfg)
	stop()
	writeHeapProfile()
	if err != nil {
		logutil.Error("join failed", zap.Error(err))
		os.Exit(1)
	}
}

func parseArgument(cfg Config) (mergejoin.Argument, error) {
	arg := mergejoin.Argument{
		LeftKeys:   []sort.Key{{Pos: 0}},
		RightKeys:  []sort.Key{{Pos: 0}},
		RightAttrs: inputAttrs,
		RightTypes: inputTypes,
		Config:     cfg.Join,
	}
	switch strings.ToLower(cfg.Kind) {
	case "inner":
		arg.Kind = mergejoin.Inner
	case "left":
		arg.Kind = mergejoin.Left
	default:
		return arg, moerr.NewBadConfig(context.TODO(), "unknown join kind %q", cfg.Kind)
	}
	switch strings.ToLower(cfg.Strictness) {
	case "all":
		arg.Strictness = mergejoin.All
	case "any":
		arg.Strictness = mergejoin.Any
	case "semi":
		arg.Strictness = mergejoin.Semi
	default:
		return arg, moerr.NewBadConfig(context.TODO(), "unknown join strictness %q", cfg.Strictness)
	}
	return arg, nil
}

func loadInputs(ctx context.Context, cfg Config) (rights, lefts []*batch.Batch, err error) {
	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	load := func(path, prefix string) ([]*batch.Batch, error) {
		if path == "" {
			logutil.Infof("generate %d %s rows, seed %d", *rowsFlag, prefix, seed)
			return generate(r, prefix, *rowsFlag, *keysFlag, cfg.BatchRows), nil
		}
		return readCSV(ctx, path, cfg.BatchRows)
	}
	if rights, err = load(*rightFlag, "r"); err != nil {
		return nil, nil, err
	}
	if lefts, err = load(*leftFlag, "l"); err != nil {
		return nil, nil, err
	}
	return rights, lefts, nil
}

func run(ctx context.Context, cfg Config) error {
	arg, err := parseArgument(cfg)
	if err != nil {
		return err
	}
	ctx = logutil.WithContextFields(ctx,
		zap.Stringer("kind", arg.Kind),
		zap.Stringer("strictness", arg.Strictness))
	rights, lefts, err := loadInputs(ctx, cfg)
	if err != nil {
		return err
	}

	var storage fileservice.TempStorage
	if cfg.Join.SpillEnabled() {
		if storage, err = fileservice.NewTempStorage(cfg.Join.Spill); err != nil {
			return err
		}
		defer storage.Close()
	}
	m, err := mergejoin.New(ctx, arg, storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(ctx); err != nil {
			logutil.Warn("close join", zap.Error(err))
		}
	}()

	start := time.Now()
	refused := 0
	for i, bat := range rights {
		ok, err := m.AddBatch(ctx, bat, true)
		if err != nil {
			return err
		}
		if !ok {
			refused++
			logutil.Warn("right batch refused",
				zap.Int("batch", i),
				zap.Int("rows", bat.RowCount()))
		}
	}
	logutil.Info("right relation built",
		zap.Int("batches", len(rights)-refused),
		zap.String("rows", humanize.Comma(m.GetTotalRowCount())),
		zap.String("bytes", humanize.IBytes(uint64(m.GetTotalByteCount()))),
		logutil.Duration("cost", start))

	start = time.Now()
	outs, err := mergejoin.ParallelJoin(ctx, m, lefts, cfg.Workers)
	if err != nil {
		return err
	}
	var rows, blocks int64
	for _, bats := range outs {
		for _, bat := range bats {
			rows += int64(bat.RowCount())
			blocks++
		}
	}
	stats := m.Stats()
	logutil.Info("join done",
		zap.Stringer("kind", arg.Kind),
		zap.Stringer("strictness", arg.Strictness),
		zap.String("output-rows", humanize.Comma(rows)),
		zap.Int64("output-blocks", blocks),
		zap.Int("right-blocks", stats.Blocks),
		zap.Int("runs", stats.Runs),
		zap.Bool("spilled", stats.Spilled),
		zap.Uint64("distinct-keys", stats.DistinctKeys),
		zap.Int64("cache-hits", stats.CacheHits),
		zap.Int64("cache-misses", stats.CacheMisses),
		zap.String("spill-written", humanize.IBytes(uint64(stats.IO.BytesWrite))),
		zap.String("spill-read", humanize.IBytes(uint64(stats.IO.BytesRead))),
		logutil.Duration("cost", start))
	return nil
}
