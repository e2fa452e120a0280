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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/stats"
)

// SpinRecorder 遊戲紀錄員
//
// SpinRecorder 負責紀錄模擬結果，並透過Done輸出統計報表
type SpinRecorder struct {
	GameName string
	GameId   rules.GID
	Logic    rules.LogicKey
	Bet      int64
	InitBets int
	Basic    *BasicRecord
	Dist     *DistRecord
	Player   *PlayerRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet     int64
	TotalWin     int64
	JackpotWin   int64
	JackpotHits  int
	MaxWin       int64
	WinMult      float64
	WinMultSqSum float64 // 贏倍平方和
	Rounds       int
}

// DistRecord 贏倍區間落點統計
type DistRecord struct {
	WinCollect []int
}

// PlayerRecord 玩家統計
type PlayerRecord struct {
	leaveLine   int64
	InitBalance int64
	Balance     int64
	MaxBalance  int64
	MinBalance  int64
	Bust        bool
	Cashout     bool
}

// NewSpinRecorder bet 為每局押注總額，initBets 為玩家初始資金（以 bet 計）。
func NewSpinRecorder(gs *rules.GameSetting, bet int64, initBets int) (*SpinRecorder, error) {
	s := new(SpinRecorder)
	if gs == nil {
		return s, errs.NewFatal("game setting is nil")
	}
	if bet <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("bet must > 0, got: %d", bet))
	}
	if initBets < 0 {
		return s, errs.NewFatal(fmt.Sprintf("init bets must not negative integer, got: %d", initBets))
	}
	s.GameName = gs.GameName
	s.GameId = gs.GameID
	s.Logic = gs.LogicKey
	s.Bet = bet
	s.InitBets = initBets
	s.Basic = new(BasicRecord)
	s.Dist = &DistRecord{WinCollect: make([]int, len(stats.WinBucketStr()))}
	s.Player = newPlayerRecord(bet, initBets)
	return s, nil
}

// MergeSpinRecorder 合併多個同遊戲、同押注的紀錄（玩家紀錄不合併）。
func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge spin record err : empty input")
	}
	r0 := r[0]
	s := &SpinRecorder{
		GameName: r0.GameName,
		GameId:   r0.GameId,
		Logic:    r0.Logic,
		Bet:      r0.Bet,
		InitBets: r0.InitBets,
		Basic:    new(BasicRecord),
		Dist:     &DistRecord{WinCollect: make([]int, len(stats.WinBucketStr()))},
		Player:   newPlayerRecord(r0.Bet, r0.InitBets),
	}
	for _, v := range r {
		if v.GameId != r0.GameId {
			return s, errs.NewFatal("merge spin record err : different game")
		}
		if v.Bet != r0.Bet {
			return s, errs.NewFatal("merge spin record err : different bet")
		}
		if v.InitBets != r0.InitBets {
			return s, errs.NewFatal("merge spin record err : different init bets")
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.JackpotWin += v.Basic.JackpotWin
		s.Basic.JackpotHits += v.Basic.JackpotHits
		s.Basic.MaxWin = max(s.Basic.MaxWin, v.Basic.MaxWin)
		s.Basic.WinMult += v.Basic.WinMult
		s.Basic.WinMultSqSum += v.Basic.WinMultSqSum
		s.Basic.Rounds += v.Basic.Rounds
		for i := range v.Dist.WinCollect {
			s.Dist.WinCollect[i] += v.Dist.WinCollect[i]
		}
	}
	return s, nil
}

// Record 以單局結果更新基本統計與分布
func (s *SpinRecorder) Record(out *games.Outcome) {
	s.recordBasic(out)
	s.Dist.WinCollect[stats.BucketIndex(out.Win, out.Stake)]++
}

// RecordWithPlayer 在 Record 的基礎上，進一步更新玩家餘額／離場狀態，並回傳玩家是否停止遊戲。
func (s *SpinRecorder) RecordWithPlayer(out *games.Outcome) bool {
	if s.Player.Balance < out.Stake {
		s.Player.Bust = true
		return true
	}
	s.Record(out)
	return s.recordPlayer(out)
}

// Done 輸出統計報表
func (s *SpinRecorder) Done() *stats.StatReport {
	collect := make([]int, len(s.Dist.WinCollect))
	copy(collect, s.Dist.WinCollect)
	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			GameId:      s.GameId,
			Logic:       s.Logic,
			Bet:         s.Bet,
			TotalBet:    s.Basic.TotalBet,
			TotalWin:    s.Basic.TotalWin,
			JackpotWin:  s.Basic.JackpotWin,
			JackpotHits: s.Basic.JackpotHits,
			MaxWin:      s.Basic.MaxWin,
			NoWinRounds: collect[0],
			Rounds:      s.Basic.Rounds,
		},
		Mult: &stats.MultReport{
			WinMult:      s.Basic.WinMult,
			WinMultSqSum: s.Basic.WinMultSqSum,
		},
		Dist: &stats.DistReport{
			WinBucket:  stats.WinBucketStr(),
			WinCollect: collect,
		},
	}
	if s.InitBets > 0 {
		report.Player = &stats.PlayerReport{
			InitBalance: s.Player.InitBalance,
			Balance:     s.Player.Balance,
			MaxBalance:  s.Player.MaxBalance,
			MinBalance:  s.Player.MinBalance,
			Bust:        s.Player.Bust,
			Cashout:     s.Player.Cashout,
		}
	}
	report.Done()
	return report
}

func (s *SpinRecorder) recordBasic(out *games.Outcome) {
	b := s.Basic
	b.TotalBet += out.Stake
	b.TotalWin += out.Win
	if out.Jackpot > 0 {
		b.JackpotHits++
		b.JackpotWin += out.Jackpot
	}
	b.MaxWin = max(b.MaxWin, out.Win)
	if out.Stake > 0 {
		m := float64(out.Win) / float64(out.Stake)
		b.WinMult += m
		b.WinMultSqSum += m * m
	}
	b.Rounds++
}

func (s *SpinRecorder) recordPlayer(out *games.Outcome) bool {
	p := s.Player
	p.Balance += out.Win - out.Stake
	p.MaxBalance = max(p.MaxBalance, p.Balance)
	p.MinBalance = min(p.MinBalance, p.Balance)

	leave := false
	if p.Balance < s.Bet {
		p.Bust = true
		leave = true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		leave = true
	}
	return leave
}

func newPlayerRecord(bet int64, initBets int) *PlayerRecord {
	b := bet * int64(initBets)
	return &PlayerRecord{
		InitBalance: b,
		Balance:     b,
		MaxBalance:  b,
		MinBalance:  b,
		leaveLine:   3 * b, // 3倍本金離場
	}
}
