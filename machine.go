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

package royale

import (
	"sync"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// Machine 封裝一台可對外開局的機台：一個引擎 + 它專屬的 Core。
//
// 並發語意：同一台 Machine 由 mu 序列化；要併發請建立多台（MachinePool / Simulator）。
// initseed 只記錄出生起點，任意一局的重現以 Core 的 Snapshot/Restore 為準。
type Machine struct {
	gs       *rules.GameSetting
	core     *core.Core
	eng      games.Engine
	mu       sync.Mutex
	initseed int64
}

// newMachine 以 crypto/rand 產生的 seed 建立 Machine，避免對外服務時 RNG 可預測。
func newMachine(gs *rules.GameSetting, reg *games.LogicRegistry, cf core.PRNGFactory, shared *games.Shared) (*Machine, error) {
	seed, err := core.CryptoSeed()
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newMachineWithSeed(gs, reg, cf, shared, seed)
}

func newMachineWithSeed(gs *rules.GameSetting, reg *games.LogicRegistry, cf core.PRNGFactory, shared *games.Shared, seed int64) (*Machine, error) {
	m := &Machine{
		gs:       gs,
		core:     core.New(cf.New(seed)),
		initseed: seed,
	}
	eng, err := reg.Build(&games.Env{Setting: gs, Core: m.core, Shared: shared})
	if err != nil {
		return nil, err
	}
	m.eng = eng
	return m, nil
}

// Play 為主要公開入口：驗證請求、開局並回傳含前後快照的結果。
//
// 若 req 帶有 start 快照，會先還原到該快照開局，結束後再還原回原本狀態（機台序列不受影響）。
func (m *Machine) Play(req *dto.PlayRequest) (*dto.PlayResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求
	if err := m.valid(req); err != nil {
		return nil, err
	}
	replay, err := req.StartSnap()
	if err != nil {
		return nil, err
	}

	// 2. start snapshot
	startsnap, err := m.core.Snapshot()
	if err != nil {
		return nil, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	if replay != nil {
		startsnap = replay
		if err := m.core.Restore(replay); err != nil {
			return nil, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 3. 開局
	out, playErr := m.eng.Play(req.Game())

	// 4. after snapshot
	aftersnap, snapErr := m.core.Snapshot()

	// 5. 回放後還原
	if replay != nil {
		if err := m.core.Restore(rem); err != nil {
			return nil, errs.NewFatal("restore core back err " + err.Error())
		}
	}
	if playErr != nil {
		return nil, playErr
	}
	if snapErr != nil {
		return nil, errs.NewFatal("after snapshot error " + snapErr.Error())
	}

	// 6. dto
	return dto.NewPlayResult(m.gs, out, startsnap, aftersnap)
}

// Quote 驗證下注並回傳本局押注總額，不消耗亂數。
func (m *Machine) Quote(req *games.Request) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.Stake(req)
}

// PlayInternal 直接取得引擎結果；跳過快照，供模擬器與測試使用。
func (m *Machine) PlayInternal(req *games.Request) (*games.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.Play(req)
}

func (m *Machine) Setting() *rules.GameSetting { return m.gs }

func (m *Machine) Seed() int64 { return m.initseed }

func (m *Machine) valid(req *dto.PlayRequest) error {
	if req == nil {
		return errs.NewWarn("nil play request")
	}
	if m.gs.GameID != req.GameID {
		return errs.NewWarn("game id is not matched")
	}
	return nil
}
