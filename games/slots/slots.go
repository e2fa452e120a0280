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

// Package slots 單線老虎機：每格獨立依權重取樣，只看中線。
//
// 中線全部為彩金圖標時支付累積彩金池；其他三連支付 bet * multiplier。
package slots

import (
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
	"github.com/zintix-labs/royale/sdk/sampler"
)

// Grid 盤面 [reel][row]，值為 Symbols 索引。
type Grid [][]int

// Win 中線評估結果。
type Win struct {
	Symbol     string `json:"symbol,omitempty"`
	Multiplier int64  `json:"multiplier,omitempty"`
	Jackpot    bool   `json:"jackpot"`
	Amount     int64  `json:"amount"`
}

// Result 是 Outcome.Detail 的內容。
type Result struct {
	Grid   [][]string `json:"grid"`
	Line   []string   `json:"line"`
	Win    Win        `json:"win"`
	Pool   int64      `json:"jackpot_pool"`
	Reels  int        `json:"reels"`
	Rows   int        `json:"rows"`
	PayRow int        `json:"pay_row"`
}

func Register(reg *games.LogicRegistry) error {
	if err := reg.Register(rules.LogicSlots, Build); err != nil {
		return err
	}
	dto.RegisterDetail[Result](rules.LogicSlots)
	return nil
}

func Build(env *games.Env) (games.Engine, error) {
	sf, err := env.Setting.Slot()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		gs:    env.Setting,
		sf:    sf,
		core:  env.Core,
		table: NewTable(sf),
	}
	if sf.HasJackpot() {
		e.jp = JackpotOf(env.Shared, env.Setting.GameID, sf.Jackpot)
	}
	return e, nil
}

// NewTable 建立單格取樣用的圖標表，權重取自 SymbolRule.Weight。
func NewTable(sf *rules.SlotFixed) *sampler.Table[rules.SymbolRule] {
	return sampler.NewTable(sf.Symbols, func(s rules.SymbolRule) int { return s.Weight })
}

type Engine struct {
	gs    *rules.GameSetting
	sf    *rules.SlotFixed
	core  *core.Core
	table *sampler.Table[rules.SymbolRule]
	jp    *Jackpot
}

func (e *Engine) Stake(req *games.Request) (int64, error) {
	if err := e.gs.ValidBet(req.Bet); err != nil {
		return 0, err
	}
	return req.Bet, nil
}

func (e *Engine) Play(req *games.Request) (*games.Outcome, error) {
	bet, err := e.Stake(req)
	if err != nil {
		return nil, err
	}
	g := Spin(e.core, e.sf, e.table)
	w := Evaluate(e.sf, g, bet, e.jp, e.gs.MaxWinLimit)
	res := &Result{
		Grid:   Symbols(e.sf, g),
		Line:   Line(e.sf, g),
		Win:    w,
		Reels:  e.sf.Reels,
		Rows:   e.sf.Rows,
		PayRow: e.sf.PayRow,
	}
	if e.jp != nil {
		res.Pool = e.jp.Value()
	}
	out := &games.Outcome{Stake: bet, Win: w.Amount, Detail: res}
	if w.Jackpot {
		out.Jackpot = w.Amount
	}
	return out, nil
}

// Jackpot 回傳本機台所屬的彩金池，未設定時為 nil。
func (e *Engine) Jackpot() *Jackpot { return e.jp }

// Spin 每格獨立取樣。
func Spin(c *core.Core, sf *rules.SlotFixed, tb *sampler.Table[rules.SymbolRule]) Grid {
	g := make(Grid, sf.Reels)
	for r := range g {
		col := make([]int, sf.Rows)
		for i := range col {
			col[i] = tb.PickIndex(c)
		}
		g[r] = col
	}
	return g
}

// Evaluate 只看中線。jp 為 nil 時彩金圖標視為一般圖標。
// limit 為單局贏分上限（0 表示不設上限）；彩金只取走 limit，其餘留在池內。
func Evaluate(sf *rules.SlotFixed, g Grid, bet int64, jp *Jackpot, limit int64) Win {
	first := g[0][sf.PayRow]
	for r := 1; r < len(g); r++ {
		if g[r][sf.PayRow] != first {
			return Win{}
		}
	}
	sym := sf.Symbols[first]
	if jp != nil && sym.ID == sf.Jackpot.Symbol {
		return Win{Symbol: sym.ID, Jackpot: true, Amount: jp.TakeUpTo(limit)}
	}
	amount := bet * sym.Multiplier
	if limit > 0 && amount > limit {
		amount = limit
	}
	return Win{Symbol: sym.ID, Multiplier: sym.Multiplier, Amount: amount}
}

// Symbols 把盤面轉成圖標 ID，[reel][row]。
func Symbols(sf *rules.SlotFixed, g Grid) [][]string {
	out := make([][]string, len(g))
	for r, col := range g {
		out[r] = make([]string, len(col))
		for i, idx := range col {
			out[r][i] = sf.Symbols[idx].ID
		}
	}
	return out
}

// Line 中線的圖標 ID。
func Line(sf *rules.SlotFixed, g Grid) []string {
	out := make([]string, len(g))
	for r, col := range g {
		out[r] = sf.Symbols[col[sf.PayRow]].ID
	}
	return out
}
