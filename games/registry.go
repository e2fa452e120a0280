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

// Package games 定義遊戲引擎介面與 LogicKey -> Builder 的註冊表。
//
// 一個 Engine 綁定一台機台（一顆 Core），只在持有機台鎖的 goroutine 上被呼叫；
// 跨機台共享的狀態（彩金池、開獎歷史）放在 Shared。
package games

import (
	"fmt"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// Engine 單一機台上的遊戲邏輯。
type Engine interface {
	// Stake 驗證並正規化下注，回傳本局總押注。不消耗亂數。
	Stake(req *Request) (int64, error)
	// Play 開獎並結算一局。
	Play(req *Request) (*Outcome, error)
}

// Env 是 Builder 建立引擎時可用的資源。
type Env struct {
	Setting *rules.GameSetting
	Core    *core.Core
	Shared  *Shared
}

// Builder 依設定建立一個綁定機台的 Engine。
type Builder func(env *Env) (Engine, error)

type LogicRegistry struct {
	builders map[rules.LogicKey]Builder
}

func NewLogicRegistry() *LogicRegistry {
	return &LogicRegistry{builders: make(map[rules.LogicKey]Builder, 8)}
}

func (r *LogicRegistry) Register(lkey rules.LogicKey, b Builder) error {
	if lkey == "" || b == nil {
		return errs.NewFatal("logic key and builder required")
	}
	if _, ok := r.builders[lkey]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate logic builder: %s", lkey))
	}
	r.builders[lkey] = b
	return nil
}

func (r *LogicRegistry) Build(env *Env) (Engine, error) {
	if env == nil || env.Setting == nil || env.Core == nil {
		return nil, errs.NewFatal("engine env incomplete")
	}
	b, ok := r.builders[env.Setting.LogicKey]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("logic is not exist: %s", env.Setting.LogicKey))
	}
	if env.Shared == nil {
		env.Shared = NewShared()
	}
	eng, err := b(env)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("build logic failed: game=%q lkey=%q", env.Setting.GameName, env.Setting.LogicKey))
	}
	return eng, nil
}

func (r *LogicRegistry) IsExist(lkey rules.LogicKey) bool {
	_, ok := r.builders[lkey]
	return ok
}

func (r *LogicRegistry) Keys() []rules.LogicKey {
	out := make([]rules.LogicKey, 0, len(r.builders))
	for k := range r.builders {
		out = append(out, k)
	}
	return out
}

// MergeLogicRegistry 合併多個註冊表，重複的 key 一律視為錯誤。
func MergeLogicRegistry(regs ...*LogicRegistry) (*LogicRegistry, error) {
	lr := NewLogicRegistry()
	origin := make(map[rules.LogicKey]int, 8)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for lkey, b := range r.builders {
			if prev, ok := origin[lkey]; ok {
				return nil, errs.NewFatal(fmt.Sprintf("duplicate logic key %s (registry #%d and #%d)", lkey, prev, i))
			}
			lr.builders[lkey] = b
			origin[lkey] = i
		}
	}
	return lr, nil
}
