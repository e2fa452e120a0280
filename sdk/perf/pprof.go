// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package perf 包裝 runtime/pprof，供 cmd/sim 以 -p 旗標產生 profile。
//
//	go run ./cmd/sim -p cpu
//	go tool pprof build/profiling/cpu.pprof
package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// Dir profile 寫入路徑
var Dir = "build/profiling"

// RunPProf mode: "" | cpu | heap | allocs；未知的 mode 直接執行 exe。
// profile 寫入失敗時 panic，模擬結果已輸出。
func RunPProf(exe func(), mode string) {
	var err error
	switch mode {
	case "cpu":
		err = CPU(exe)
	case "heap":
		err = Snapshot(exe, "heap")
	case "allocs":
		err = Snapshot(exe, "allocs")
	default:
		exe()
	}
	if err != nil {
		panic(err)
	}
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(Dir, name+".pprof"))
}

// CPU 在 exe 期間取樣；輸出 cpu.pprof，也可作為 PGO 的 default.pgo。
func CPU(exe func()) error {
	f, err := create("cpu")
	if err != nil {
		return fmt.Errorf("create cpu profile: %w", err)
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	defer pprof.StopCPUProfile()
	exe()
	return nil
}

// Snapshot exe 結束後寫出一次 heap（in-use，先 GC）或 allocs（累積配置）。
func Snapshot(exe func(), kind string) error {
	exe()
	prof := pprof.Lookup(kind)
	if prof == nil {
		return fmt.Errorf("unknown profile %q", kind)
	}
	if kind == "heap" {
		runtime.GC()
	}
	f, err := create(kind)
	if err != nil {
		return fmt.Errorf("create %s profile: %w", kind, err)
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return fmt.Errorf("write %s profile: %w", kind, err)
	}
	return nil
}
