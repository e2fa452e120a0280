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

package slots

import (
	"sync/atomic"
	"time"

	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

const jackpotKind = "slots.jackpot"

// Jackpot 累積彩金池，同一 GID 的所有機台共用一個。
type Jackpot struct {
	pool atomic.Int64
	rule rules.JackpotRule
}

func NewJackpot(rule rules.JackpotRule) *Jackpot {
	j := &Jackpot{rule: rule}
	j.pool.Store(rule.Seed)
	return j
}

func JackpotOf(s *games.Shared, gid rules.GID, rule rules.JackpotRule) *Jackpot {
	return s.LoadOrStore(gid, jackpotKind, func() any { return NewJackpot(rule) }).(*Jackpot)
}

// Jackpots 走訪所有已建立的彩金池。
func Jackpots(s *games.Shared, fn func(gid rules.GID, j *Jackpot)) {
	s.Each(jackpotKind, func(gid rules.GID, v any) {
		if j, ok := v.(*Jackpot); ok {
			fn(gid, j)
		}
	})
}

func LookupJackpot(s *games.Shared, gid rules.GID) (*Jackpot, bool) {
	v, ok := s.Load(gid, jackpotKind)
	if !ok {
		return nil, false
	}
	j, ok := v.(*Jackpot)
	return j, ok
}

func (j *Jackpot) Value() int64 { return j.pool.Load() }

func (j *Jackpot) Every() time.Duration { return j.rule.GrowEvery }

// Grow 增加 [GrowMin, GrowMax] 並回傳新值。
func (j *Jackpot) Grow(c *core.Core) int64 {
	return j.pool.Add(c.Between(j.rule.GrowMin, j.rule.GrowMax))
}

// Take 取走整個池並重置為 Seed。
func (j *Jackpot) Take() int64 {
	return j.pool.Swap(j.rule.Seed)
}

// TakeUpTo 取走至多 limit；limit <= 0 等同 Take。池中超出 limit 的部分保留，且不低於 Seed。
func (j *Jackpot) TakeUpTo(limit int64) int64 {
	if limit <= 0 {
		return j.Take()
	}
	for {
		cur := j.pool.Load()
		if cur <= limit {
			if j.pool.CompareAndSwap(cur, j.rule.Seed) {
				return cur
			}
			continue
		}
		if j.pool.CompareAndSwap(cur, max(cur-limit, j.rule.Seed)) {
			return limit
		}
	}
}
