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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/royale/sdk/core"
)

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []int, samples []int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	counts := make(map[int]int)
	for _, idx := range samples {
		counts[idx]++
	}
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expected := float64(w) / float64(totalW)
		actual := float64(counts[i]) / float64(len(samples))
		if diff := math.Abs(expected - actual); diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.4f, got %.4f (diff %.4f > tol %.4f)",
				name, i, expected, actual, diff, tolerance)
		}
	}
}

func TestAliasTableDistribution(t *testing.T) {
	c := core.New(core.Default().New(1))
	tests := []struct {
		name    string
		weights []int
	}{
		{"golden_fruits", []int{60, 50, 40, 30, 10, 6, 2, 1}},
		{"uniform", []int{1, 1, 1, 1}},
		{"with_zero", []int{5, 0, 5}},
		{"single", []int{7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			at := BuildAliasTable(tc.weights)
			samples := make([]int, 200000)
			for i := range samples {
				samples[i] = at.Pick(c)
			}
			checkDistribution(t, tc.name, tc.weights, samples, 0.01)
		})
	}
}

func TestAliasTableWeightRoundTrip(t *testing.T) {
	weights := []int{60, 50, 40, 30, 10, 6, 2, 1}
	at := BuildAliasTable(weights)
	for i, w := range weights {
		if got := at.Weight(i); got != w {
			t.Fatalf("weight[%d]: expected %d, got %d", i, w, got)
		}
	}
	if at.Weight(-1) != 0 || at.Weight(len(weights)) != 0 {
		t.Fatalf("out of range weight should be 0")
	}
}

func TestAliasTableInvalid(t *testing.T) {
	assertPanic(t, func() { BuildAliasTable([]int{1, -1}) }, "negative weight")
	assertPanic(t, func() { BuildAliasTable([]int{0, 0}) }, "all zero")
	assertPanic(t, func() { BuildAliasTable([]int{math.MaxInt / 2, math.MaxInt / 2}) }, "overflow")

	empty := BuildAliasTable([]int{})
	if got := empty.Pick(core.New(core.Default().New(1))); got != -1 {
		t.Fatalf("empty table should pick -1, got %d", got)
	}
}

func TestTablePick(t *testing.T) {
	type sym struct {
		id string
		w  int64
	}
	items := []sym{{"cherry", 3}, {"bell", 1}, {"never", 0}}
	tb := NewTable(items, func(s sym) int64 { return s.w })
	if tb.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", tb.Len())
	}
	if p := tb.Prob(0); math.Abs(p-0.75) > 1e-9 {
		t.Fatalf("expected prob 0.75, got %v", p)
	}
	c := core.New(core.Default().New(5))
	for i := 0; i < 10000; i++ {
		s, ok := tb.Pick(c)
		if !ok {
			t.Fatalf("pick failed")
		}
		if s.id == "never" {
			t.Fatalf("zero weight item picked")
		}
	}

	empty := NewTable([]sym{}, func(s sym) int64 { return s.w })
	if _, ok := empty.Pick(c); ok {
		t.Fatalf("empty table should not pick")
	}
}
