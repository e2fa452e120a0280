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

package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryWindow(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if ok, _ := m.Allow(ctx, "u1", 3, time.Minute); !ok {
			t.Fatalf("call %d should pass", i)
		}
	}
	if ok, _ := m.Allow(ctx, "u1", 3, time.Minute); ok {
		t.Fatalf("4th call should be limited")
	}
	if ok, _ := m.Allow(ctx, "u2", 3, time.Minute); !ok {
		t.Fatalf("other key should pass")
	}
	now = now.Add(time.Minute)
	if ok, _ := m.Allow(ctx, "u1", 3, time.Minute); !ok {
		t.Fatalf("new window should pass")
	}
	if ok, _ := m.Allow(ctx, "u1", 0, time.Minute); !ok {
		t.Fatalf("limit 0 means unlimited")
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()
	_, _ = m.Allow(ctx, "old", 1, time.Second)
	now = now.Add(time.Hour)
	for i := 0; i < 1024; i++ {
		_, _ = m.Allow(ctx, "hot", 5000, time.Hour)
	}
	m.mu.Lock()
	_, ok := m.buckets["old"]
	m.mu.Unlock()
	if ok {
		t.Fatalf("expired bucket should be swept")
	}
}
