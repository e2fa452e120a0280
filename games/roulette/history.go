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

package roulette

import (
	"sync"

	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
)

// History 固定長度的環狀開獎紀錄，同一桌的所有機台共用。
type History struct {
	mu   sync.Mutex
	ring []rules.Pocket
	next int
	n    int
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 10
	}
	return &History{ring: make([]rules.Pocket, size)}
}

// HistoryOf 取得 gid 的共用歷史。
func HistoryOf(s *games.Shared, gid rules.GID, size int) *History {
	return s.LoadOrStore(gid, historyKind, func() any { return NewHistory(size) }).(*History)
}

// LookupHistory 只查詢，桌台尚未建立時回傳 false。
func LookupHistory(s *games.Shared, gid rules.GID) (*History, bool) {
	v, ok := s.Load(gid, historyKind)
	if !ok {
		return nil, false
	}
	h, ok := v.(*History)
	return h, ok
}

func (h *History) Push(p rules.Pocket) {
	h.mu.Lock()
	h.ring[h.next] = p
	h.next = (h.next + 1) % len(h.ring)
	if h.n < len(h.ring) {
		h.n++
	}
	h.mu.Unlock()
}

// Last 新到舊。
func (h *History) Last() []rules.Pocket {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]rules.Pocket, 0, h.n)
	for i := 1; i <= h.n; i++ {
		out = append(out, h.ring[(h.next-i+len(h.ring))%len(h.ring)])
	}
	return out
}
