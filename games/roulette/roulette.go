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

// Package roulette 歐式輪盤：均勻選格、單次結算、桌台開獎歷史。
package roulette

import (
	"fmt"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

const historyKind = "roulette.history"

// Bet 正規化後的一筆押注。
type Bet struct {
	Type   rules.BetType `json:"type"`
	Number int           `json:"number,omitempty"`
	Amount int64         `json:"amount"`
}

type BetResult struct {
	Bet
	Payout int64 `json:"payout"`
	Won    bool  `json:"won"`
	Win    int64 `json:"win"`
}

// Result 是 Outcome.Detail 的內容。
type Result struct {
	Pocket rules.Pocket `json:"pocket"`
	Bets   []BetResult  `json:"bets"`
}

func Register(reg *games.LogicRegistry) error {
	if err := reg.Register(rules.LogicRoulette, Build); err != nil {
		return err
	}
	dto.RegisterDetail[Result](rules.LogicRoulette)
	return nil
}

func Build(env *games.Env) (games.Engine, error) {
	rf, err := env.Setting.Roulette()
	if err != nil {
		return nil, err
	}
	return &Engine{
		gs:   env.Setting,
		rf:   rf,
		core: env.Core,
		hist: HistoryOf(env.Shared, env.Setting.GameID, rf.History),
	}, nil
}

type Engine struct {
	gs   *rules.GameSetting
	rf   *rules.RouletteFixed
	core *core.Core
	hist *History
}

func (e *Engine) Stake(req *games.Request) (int64, error) {
	bets, err := Normalize(e.gs, e.rf, req.Bets)
	if err != nil {
		return 0, err
	}
	return Total(bets), nil
}

func (e *Engine) Play(req *games.Request) (*games.Outcome, error) {
	bets, err := Normalize(e.gs, e.rf, req.Bets)
	if err != nil {
		return nil, err
	}
	pocket := Spin(e.core, e.rf)
	_, results := Settle(e.rf, bets, pocket)
	win := CapResults(e.gs.MaxWinLimit, results)
	e.hist.Push(pocket)
	return &games.Outcome{
		Stake:  Total(bets),
		Win:    win,
		Detail: &Result{Pocket: pocket, Bets: results},
	}, nil
}

// History 回傳本桌開獎歷史（新到舊）。
func (e *Engine) History() []rules.Pocket { return e.hist.Last() }

// Spin 在輪盤表上均勻選一格。
func Spin(c *core.Core, rf *rules.RouletteFixed) rules.Pocket {
	return rf.Wheel[c.IntN(len(rf.Wheel))]
}

// Normalize 驗證並合併下注：同種類（straight 另需同號碼）的金額相加，保留首次出現的順序。
// 合併後每筆金額須落在 [MinBet, MaxBet]。
func Normalize(gs *rules.GameSetting, rf *rules.RouletteFixed, in []games.BetInput) ([]Bet, error) {
	if len(in) == 0 {
		return nil, errs.NewWarn("at least one bet required")
	}
	type key struct {
		t rules.BetType
		n int
	}
	pos := make(map[key]int, len(in))
	out := make([]Bet, 0, len(in))
	for _, b := range in {
		t, ok := rules.ParseBetType(b.Type)
		if !ok {
			return nil, errs.Warnf("unknown bet type: %q", b.Type)
		}
		if _, ok := rf.Payout(t); !ok {
			return nil, errs.Warnf("bet type %q not offered on this table", t)
		}
		if b.Amount <= 0 {
			return nil, errs.Warnf("bet amount must > 0, got %d", b.Amount)
		}
		n := 0
		if t == rules.BetStraight {
			if b.Number < 0 || b.Number >= rules.WheelSize {
				return nil, errs.Warnf("straight number out of range: %d", b.Number)
			}
			n = b.Number
		} else if b.Number != 0 {
			return nil, errs.Warnf("bet type %q takes no number", t)
		}
		k := key{t, n}
		if i, ok := pos[k]; ok {
			out[i].Amount += b.Amount
			continue
		}
		pos[k] = len(out)
		out = append(out, Bet{Type: t, Number: n, Amount: b.Amount})
	}
	for _, b := range out {
		if err := gs.ValidBet(b.Amount); err != nil {
			return nil, errs.WrapWithExtra(err, "bet out of table limits", fmt.Sprintf("%s:%d", b.Type, b.Number))
		}
	}
	return out, nil
}

func Total(bets []Bet) int64 {
	var sum int64
	for _, b := range bets {
		sum += b.Amount
	}
	return sum
}

// Settle 對全部押注做一次結算，贏的押注支付 amount*(payout+1)。
func Settle(rf *rules.RouletteFixed, bets []Bet, winner rules.Pocket) (int64, []BetResult) {
	var total int64
	res := make([]BetResult, len(bets))
	for i, b := range bets {
		p, _ := rf.Payout(b.Type)
		r := BetResult{Bet: b, Payout: p}
		if Wins(b, winner) {
			r.Won = true
			r.Win = b.Amount * (p + 1)
			total += r.Win
		}
		res[i] = r
	}
	return total, res
}

// CapResults 依下注順序截斷單注贏分，使總和不超過 limit（0 表示不設上限），回傳截斷後的總贏分。
func CapResults(limit int64, results []BetResult) int64 {
	var total int64
	for i := range results {
		if limit > 0 && total+results[i].Win > limit {
			results[i].Win = limit - total
		}
		total += results[i].Win
	}
	return total
}

// Wins 判斷單筆押注是否命中。
func Wins(b Bet, w rules.Pocket) bool {
	n := w.Number
	switch b.Type {
	case rules.BetStraight:
		return n == b.Number
	case rules.BetRed:
		return w.Color == rules.Red
	case rules.BetBlack:
		return w.Color == rules.Black
	case rules.BetEven:
		return n > 0 && n%2 == 0
	case rules.BetOdd:
		return n > 0 && n%2 == 1
	case rules.BetLow:
		return n >= 1 && n <= 18
	case rules.BetHigh:
		return n >= 19 && n <= 36
	case rules.BetDozen1:
		return n >= 1 && n <= 12
	case rules.BetDozen2:
		return n >= 13 && n <= 24
	case rules.BetDozen3:
		return n >= 25 && n <= 36
	}
	return false
}
