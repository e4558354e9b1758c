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
	"flag"
	"os"
	"runtime/pprof"

	"github.com/matrixorigin/mergejoin/pkg/logutil"
)

var (
	cpuProfilePathFlag  = flag.String("cpu-profile", "", "write cpu profile to the specified file")
	heapProfilePathFlag = flag.String("heap-profile", "", "write heap profile to the specified file after the join")
)

func startCPUProfile() func() {
	if *cpuProfilePathFlag == "" {
		return func() {}
	}
	f, err := os.Create(*cpuProfilePathFlag)
	if err != nil {
		panic(err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		panic(err)
	}
	logutil.Infof("CPU profiling enabled, writing to %s", *cpuProfilePathFlag)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func writeHeapProfile() {
	if *heapProfilePathFlag == "" {
		return
	}
	profile := pprof.Lookup("heap")
	if profile == nil {
		return
	}
	f, err := os.Create(*heapProfilePathFlag)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := profile.WriteTo(f, 0); err != nil {
		panic(err)
	}
	logutil.Infof("Heap profile written to %s", *heapProfilePathFlag)
}
