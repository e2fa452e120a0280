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

// Package royale 提供賭場引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Royale 把下列三個地基組裝在一起，並提供建立 Machine / Runtime / Simulator 的入口：
//  1. Catalog：遊戲目錄，定義有哪些遊戲、各自對應的設定檔名稱（ConfigName）。
//  2. LogicRegistry：邏輯註冊表，依設定內的 LogicKey 建出輪盤或老虎機引擎。
//  3. PRNGFactory：亂數核心工廠，保證同 seed 可重現、每局可由快照審計。
//
// 典型使用情境：
//   - 後端服務：BuildRuntime 建出每款遊戲的機台池，由 Runtime.Play 對外開局。
//   - 模擬器：NewSimulator 以多台機台大量開局並輸出 RTP 統計。
//   - 審計：Replay 以某局記錄的 start 快照在隔離機台上重跑該局。
package royale

import (
	"io/fs"

	"github.com/zintix-labs/royale/catalog"
	"github.com/zintix-labs/royale/configs"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/games/roulette"
	"github.com/zintix-labs/royale/games/slots"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// Configs 把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把 configs 直接編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Logics 把一或多個邏輯註冊表打包成 New() 需要的參數。
// New() 會合併它們；重複的 LogicKey 直接失敗。
func Logics(regs ...*games.LogicRegistry) []*games.LogicRegistry {
	return regs
}

// DefaultLogics 內建的輪盤與老虎機邏輯。
func DefaultLogics() (*games.LogicRegistry, error) {
	reg := games.NewLogicRegistry()
	if err := roulette.Register(reg); err != nil {
		return nil, err
	}
	if err := slots.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Royale 是組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊/組裝階段：建立 catalog、合併 registries、檢查重複與缺漏。
//   - 執行階段：Freeze 之後依遊戲 ID 產生 Machine 或 Runtime。
//
// shared 為線上機台共用的狀態（彩金池、開獎歷史）；模擬器與回放各自使用隔離的 Shared。
type Royale struct {
	cat    *catalog.Catalog
	reg    *games.LogicRegistry
	cf     core.PRNGFactory
	shared *games.Shared
}

// New 建立一個 Royale instance（尚未註冊任何遊戲）。
//
// 參數要求：
//   - cf 不能為 nil
//   - cfgs 至少一個
//   - logics 至少一個
func New(cf core.PRNGFactory, cfgs []fs.FS, logics []*games.LogicRegistry) (*Royale, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(logics) == 0 {
		return nil, errs.NewFatal("logic registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	reg, err := games.MergeLogicRegistry(logics...)
	if err != nil {
		return nil, err
	}
	return &Royale{
		cat:    cata,
		reg:    reg,
		cf:     cf,
		shared: games.NewShared(),
	}, nil
}

// NewAuto 註冊設定來源內的全部遊戲並 Freeze，直接進入執行階段。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, logics []*games.LogicRegistry) (*Royale, error) {
	r, err := New(cf, cfgs, logics)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterAll(); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

// NewDefault 使用內建設定與內建邏輯。
func NewDefault() (*Royale, error) {
	reg, err := DefaultLogics()
	if err != nil {
		return nil, err
	}
	return NewAuto(core.Default(), Configs(configs.FS), Logics(reg))
}

func (r *Royale) Register(ents ...catalog.Entry) error {
	return r.cat.Register(ents...)
}

// RegisterAll 掃描全部設定檔並一次性註冊。
//
// 任何一個檔案解析失敗或 LogicKey 沒有對應的 builder，都會整批失敗，不會留下半註冊的目錄。
func (r *Royale) RegisterAll() error {
	n, err := r.cat.Discover(r.reg.IsExist)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return nil
}

func (r *Royale) Freeze() {
	r.cat.Freeze()
}

func (r *Royale) EntryById(id rules.GID) (catalog.Entry, bool) {
	return r.cat.GetByID(id)
}

func (r *Royale) EntryByName(name string) (catalog.Entry, bool) {
	return r.cat.GetByName(name)
}

func (r *Royale) IDs() []rules.GID {
	return r.cat.IDs()
}

func (r *Royale) All() []catalog.Entry {
	return r.cat.All()
}

// Setting 取得遊戲設定（唯讀）。
func (r *Royale) Setting(id rules.GID) (*rules.GameSetting, error) {
	return r.cat.GameSettingById(id)
}

// Shared 線上機台共用的狀態。
func (r *Royale) Shared() *games.Shared {
	return r.shared
}

func (r *Royale) Summary() ([]catalog.Summary, error) {
	if !r.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return r.cat.Summaries(), nil
}

// NewMachine 依遊戲 ID 建立一台線上機台（seed 由 crypto/rand 產生）。
func (r *Royale) NewMachine(id rules.GID) (*Machine, error) {
	gs, err := r.frozenSetting(id)
	if err != nil {
		return nil, err
	}
	return newMachine(gs, r.reg, r.cf, r.shared)
}

// NewMachineWithSeed 與 NewMachine 相同，但由呼叫端指定初始 seed。
// 同一份設定 + 同一個 seed 會得到一致的開獎序列。
func (r *Royale) NewMachineWithSeed(id rules.GID, seed int64) (*Machine, error) {
	gs, err := r.frozenSetting(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, r.reg, r.cf, r.shared, seed)
}

func (r *Royale) NewSimulator(id rules.GID) (*Simulator, error) {
	gs, err := r.frozenSetting(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(gs, r.reg, r.cf)
}

func (r *Royale) NewSimulatorWithSeed(id rules.GID, seed int64) (*Simulator, error) {
	gs, err := r.frozenSetting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, r.reg, r.cf, seed)
}

// Replay 在隔離機台上以 req.StartB64U 的快照重跑一局。
//
// 隔離機台不影響線上的彩金池與開獎歷史；彩金池以種子值起算，因此只有盤面與一般賠付可逐位比對。
func (r *Royale) Replay(req *dto.PlayRequest) (*dto.PlayResult, error) {
	if req == nil || req.StartB64U == "" {
		return nil, errs.NewWarn("start snapshot required")
	}
	gs, err := r.frozenSetting(req.GameID)
	if err != nil {
		return nil, err
	}
	m, err := newMachineWithSeed(gs, r.reg, r.cf, games.NewShared(), 0)
	if err != nil {
		return nil, err
	}
	return m.Play(req)
}

// BuildRuntime 為每款遊戲建立 poolSize 台機台的池。
func (r *Royale) BuildRuntime(poolSize int) (*Runtime, error) {
	// 進入 runtime 前，catalog 必須 Freeze
	r.Freeze()

	ids := r.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}
	rt := newRuntime(r, ids, poolSize)
	for _, id := range ids {
		gs, err := r.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}
		seed, err := core.CryptoSeed()
		if err != nil {
			return nil, errs.Wrap(err, "new crypto seed error in go std lib")
		}
		mp, err := newMachinePool(rt.poolSize, gs, r.reg, r.cf, r.shared, seed)
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
	}
	return rt, nil
}

func (r *Royale) frozenSetting(id rules.GID) (*rules.GameSetting, error) {
	if !r.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return r.cat.GameSettingById(id)
}
