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

// Package lobby 首頁資料：遊戲列表、彩金池、精選錦標賽與排行。
package lobby

import (
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/catalog"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/tournament"
)

const (
	GameOpen        = "open"
	GameMaintenance = "maintenance"

	Featured = 3
	TopN     = 5
)

// Game 遊戲摘要加上目前狀態
type Game struct {
	catalog.Summary
	Status  string `json:"status"`
	Jackpot int64  `json:"jackpot,omitempty"`
}

// Jackpot 一款老虎機的彩金池
type Jackpot struct {
	GID   rules.GID `json:"gid"`
	Name  string    `json:"name"`
	Value int64     `json:"value"`
}

// Page 首頁
type Page struct {
	Games       []Game             `json:"games"`
	Jackpots    []Jackpot          `json:"jackpots"`
	Jackpot     int64              `json:"jackpot"` // 全部彩金池合計
	Tournaments []tournament.View  `json:"tournaments"`
	Leaderboard []tournament.Entry `json:"leaderboard"`
	LeaderOf    string             `json:"leaderboard_tournament,omitempty"`
}

type Lobby struct {
	rt    *royale.Runtime
	board *tournament.Board
}

// New board 可為 nil
func New(rt *royale.Runtime, board *tournament.Board) (*Lobby, error) {
	if rt == nil {
		return nil, errs.NewFatal("lobby: nil runtime")
	}
	return &Lobby{rt: rt, board: board}, nil
}

// Games 依 GID 順序
func (l *Lobby) Games() []Game {
	ids := l.rt.IDs()
	out := make([]Game, 0, len(ids))
	for _, id := range ids {
		gs, err := l.rt.Setting(id)
		if err != nil {
			continue
		}
		g := Game{Summary: catalog.SummaryOf(gs), Status: GameOpen}
		if l.rt.InMaintenance(id) {
			g.Status = GameMaintenance
		}
		if jp, err := l.rt.Jackpot(id); err == nil {
			g.Jackpot = jp.Value()
		}
		out = append(out, g)
	}
	return out
}

// Page uid 可為空（未登入）
func (l *Lobby) Page(uid string) Page {
	p := Page{Games: l.Games()}
	for _, g := range p.Games {
		if g.Logic == rules.LogicSlots && g.Jackpot > 0 {
			p.Jackpots = append(p.Jackpots, Jackpot{GID: g.GID, Name: g.Title, Value: g.Jackpot})
			p.Jackpot += g.Jackpot
		}
	}
	if l.board == nil {
		return p
	}
	for _, v := range l.board.List(uid) {
		if v.Status == tournament.StatusFinished {
			continue
		}
		p.Tournaments = append(p.Tournaments, v)
		if len(p.Tournaments) == Featured {
			break
		}
	}
	// 排行取第一場進行中的錦標賽
	for _, v := range p.Tournaments {
		if v.Status != tournament.StatusActive {
			continue
		}
		if top, err := l.board.Leaderboard(v.ID, TopN); err == nil {
			p.Leaderboard = top
			p.LeaderOf = v.ID
		}
		break
	}
	return p
}
