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

package core

import (
	"slices"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(37) != c2.IntN(37) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestCoreBounds(t *testing.T) {
	c := New(Default().New(3))
	if got := c.IntN(0); got != -1 {
		t.Fatalf("IntN(0) expected -1, got %d", got)
	}
	if got := c.UintN(0); got != 0 {
		t.Fatalf("UintN(0) expected 0, got %d", got)
	}
	for i := 0; i < 1000; i++ {
		if v := c.IntN(37); v < 0 || v >= 37 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := c.Between(50, 149); v < 50 || v > 149 {
			t.Fatalf("Between out of range: %d", v)
		}
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
	}
	if got := c.Between(5, 5); got != 5 {
		t.Fatalf("Between(5,5) expected 5, got %d", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Default().New(42))
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	first := []int{c.IntN(100), c.IntN(100), c.IntN(100)}

	enc := EncodeSnap(snap)
	raw, err := DecodeSnap(enc)
	if err != nil {
		t.Fatalf("decode snap: %v", err)
	}
	if err := c.Restore(raw); err != nil {
		t.Fatalf("restore: %v", err)
	}
	again := []int{c.IntN(100), c.IntN(100), c.IntN(100)}
	if !slices.Equal(first, again) {
		t.Fatalf("restore should replay sequence: %v vs %v", first, again)
	}
}

func TestCorePickEmpty(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
}

func TestCryptoSeed(t *testing.T) {
	s, err := CryptoSeed()
	if err != nil {
		t.Fatalf("crypto seed: %v", err)
	}
	if s < 0 {
		t.Fatalf("seed must be non-negative, got %d", s)
	}
}
