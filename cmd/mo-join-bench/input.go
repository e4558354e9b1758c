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
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/matrixorigin/simdcsv"

	"github.com/matrixorigin/mergejoin/pkg/common/moerr"
	"github.com/matrixorigin/mergejoin/pkg/container/batch"
	"github.com/matrixorigin/mergejoin/pkg/container/types"
	"github.com/matrixorigin/mergejoin/pkg/container/vector"
)

// Both inputs are (k bigint, v varchar) relations. An empty key is null.
var (
	inputAttrs = []string{"k", "v"}
	inputTypes = []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()}
)

const readRows = 4000

// readCSV reads the two column csv file at path into batches of batchRows
// rows.
func readCSV(ctx context.Context, path string, batchRows int) ([]*batch.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(ctx, f, batchRows)
}

func parseCSV(ctx context.Context, r io.Reader, batchRows int) ([]*batch.Batch, error) {
	reader := simdcsv.NewReaderWithOptions(r, ',', '#', true, true)
	records := make([][]string, readRows)

	var bats []*batch.Batch
	bat := batch.NewWithSchema(inputAttrs, inputTypes)
	line := 0
	for {
		var cnt int
		var err error
		records, cnt, err = reader.Read(readRows, ctx, records)
		if err != nil {
			return nil, err
		}
		for _, record := range records[:cnt] {
			line++
			if len(record) != 2 {
				return nil, moerr.NewInvalidInput(ctx, "line %d has %d fields, expect 2", line, len(record))
			}
			if err := appendRow(bat, record[0], record[1]); err != nil {
				return nil, moerr.NewInvalidInput(ctx, "line %d: %v", line, err)
			}
			if bat.RowCount() == batchRows {
				bats = append(bats, bat)
				bat = batch.NewWithSchema(inputAttrs, inputTypes)
			}
		}
		if cnt < readRows {
			break
		}
	}
	if !bat.IsEmpty() {
		bats = append(bats, bat)
	}
	return bats, nil
}

func appendRow(bat *batch.Batch, key string, value string) error {
	key = strings.TrimSpace(key)
	var k int64
	if key != "" {
		var err error
		if k, err = strconv.ParseInt(key, 10, 64); err != nil {
			return err
		}
	}
	if err := vector.Append(bat.Vecs[0], k, key == ""); err != nil {
		return err
	}
	if err := vector.AppendString(bat.Vecs[1], value, false); err != nil {
		return err
	}
	bat.SetRowCount(bat.RowCount() + 1)
	return nil
}

// generate returns rows random rows with keys in [0, keys) as batches of
// batchRows rows.
func generate(r *rand.Rand, prefix string, rows int, keys int64, batchRows int) []*batch.Batch {
	var bats []*batch.Batch
	for start := 0; start < rows; start += batchRows {
		bat := batch.NewWithSchema(inputAttrs, inputTypes)
		for i := start; i < rows && i < start+batchRows; i++ {
			k := r.Int63n(keys)
			if err := appendRow(bat, strconv.FormatInt(k, 10), fmt.Sprintf("%s%d", prefix, i)); err != nil {
				panic(err)
			}
		}
		bats = append(bats, bat)
	}
	return bats
}
