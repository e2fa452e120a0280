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

// Package rounds 保存每一局的審計紀錄（含前後 Core 快照，可用於回放）。
package rounds

import (
	"sync"
	"time"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
)

// DefaultKeep 每位玩家保留的局數
const DefaultKeep = 200

var ErrNotFound = errs.NewNotFound("round not found")

// Round 一局的審計紀錄
type Round struct {
	RoundID        string         `json:"round_id"`
	GID            rules.GID      `json:"gid"`
	Game           string         `json:"game"`
	UserID         string         `json:"user_id"`
	Bet            int64          `json:"bet"`
	Win            int64          `json:"win"`
	Jackpot        int64          `json:"jackpot,omitempty"`
	Request        *games.Request `json:"request"`
	Outcome        any            `json:"outcome"`
	CoreSnapBefore string         `json:"core_snap_before"`
	CoreSnapAfter  string         `json:"core_snap_after"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FromResult 由一局請求與結果建立紀錄；req 與 CoreSnapBefore 足以回放該局。
func FromResult(uid string, req *games.Request, pr *dto.PlayResult) Round {
	return Round{
		RoundID:        pr.RoundID,
		GID:            pr.GameID,
		Game:           pr.GameName,
		UserID:         uid,
		Bet:            pr.Stake,
		Win:            pr.Win,
		Jackpot:        pr.Jackpot,
		Request:        req,
		Outcome:        pr.Detail,
		CoreSnapBefore: pr.State.StartB64U,
		CoreSnapAfter:  pr.State.AfterB64U,
		CreatedAt:      pr.PlayedAt,
	}
}

// Log 記憶體中的局紀錄；每位玩家只保留最近 keep 局。
type Log struct {
	mu     sync.RWMutex
	keep   int
	byUser map[string][]Round
	byID   map[string]Round
}

func NewLog(keep int) *Log {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Log{keep: keep, byUser: map[string][]Round{}, byID: map[string]Round{}}
}

func (l *Log) Add(r Round) {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := append(l.byUser[r.UserID], r)
	if over := len(list) - l.keep; over > 0 {
		for _, old := range list[:over] {
			delete(l.byID, old.RoundID)
		}
		list = append([]Round(nil), list[over:]...)
	}
	l.byUser[r.UserID] = list
	l.byID[r.RoundID] = r
}

// Recent 最近 n 局，新到舊
func (l *Log) Recent(uid string, n int) []Round {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list := l.byUser[uid]
	if n <= 0 || n > len(list) {
		n = len(list)
	}
	out := make([]Round, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out
}

func (l *Log) Get(id string) (Round, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.byID[id]
	if !ok {
		return Round{}, ErrNotFound
	}
	return r, nil
}
