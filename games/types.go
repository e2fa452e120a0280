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

package games

import (
	"sort"
	"sync"

	"github.com/zintix-labs/royale/rules"
)

// Request 一局的下注內容。老虎機只看 Bet；輪盤只看 Bets。
type Request struct {
	Bet  int64      `json:"bet,omitempty"`
	Bets []BetInput `json:"bets,omitempty"`
}

// BetInput 玩家送出的一筆輪盤押注；Number 只對 straight 有意義。
type BetInput struct {
	Type   string `json:"type"`
	Number int    `json:"number,omitempty"`
	Amount int64  `json:"amount"`
}

// Outcome 一局結算結果。Detail 由各引擎自行定義，必須可被 JSON 編碼。
type Outcome struct {
	Stake   int64 `json:"stake"`
	Win     int64 `json:"win"`
	Jackpot int64 `json:"jackpot,omitempty"` // Win 中來自累積彩金池的部分
	Detail  any   `json:"detail"`
}

// Shared 跨機台共享的狀態，以 (GID, kind) 為鍵。
type Shared struct {
	mu    sync.Mutex
	items map[sharedKey]any
}

type sharedKey struct {
	gid  rules.GID
	kind string
}

func NewShared() *Shared {
	return &Shared{items: map[sharedKey]any{}}
}

// LoadOrStore 取得 (gid, kind) 的共享物件，不存在時以 mk 建立。
func (s *Shared) LoadOrStore(gid rules.GID, kind string, mk func() any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sharedKey{gid: gid, kind: kind}
	if v, ok := s.items[k]; ok {
		return v
	}
	v := mk()
	s.items[k] = v
	return v
}

// Load 只讀取，不建立。
func (s *Shared) Load(gid rules.GID, kind string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[sharedKey{gid: gid, kind: kind}]
	return v, ok
}

// Each 依 GID 由小到大走訪同一種類的共享物件。
func (s *Shared) Each(kind string, fn func(gid rules.GID, v any)) {
	s.mu.Lock()
	type pair struct {
		gid rules.GID
		v   any
	}
	list := make([]pair, 0, len(s.items))
	for k, v := range s.items {
		if k.kind == kind {
			list = append(list, pair{k.gid, v})
		}
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].gid < list[j].gid })
	for _, p := range list {
		fn(p.gid, p.v)
	}
}
