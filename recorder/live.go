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
	"sort"
	"sync"

	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
)

// LiveSnapshot 線上遊戲的即時統計
type LiveSnapshot struct {
	GID         rules.GID `json:"gid"`
	Name        string    `json:"name"`
	Players     int       `json:"players"`
	TotalBet    int64     `json:"total_bet"`
	TotalWin    int64     `json:"total_win"`
	Revenue     int64     `json:"revenue"`
	RTP         float64   `json:"rtp"` // 百分比
	Rounds      int       `json:"rounds"`
	JackpotHits int       `json:"jackpot_hits"`
}

type liveGame struct {
	name        string
	players     map[string]struct{}
	totalBet    int64
	totalWin    int64
	rounds      int
	jackpotHits int
}

// LiveRecorder 線上對局紀錄，可併發使用。
type LiveRecorder struct {
	mu    sync.RWMutex
	games map[rules.GID]*liveGame
}

func NewLiveRecorder() *LiveRecorder {
	return &LiveRecorder{games: map[rules.GID]*liveGame{}}
}

// Track 預先登記遊戲，使沒有對局的遊戲也會出現在統計中。
func (l *LiveRecorder) Track(gid rules.GID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.game(gid, name)
}

// Record 紀錄一局
func (l *LiveRecorder) Record(gid rules.GID, name string, uid string, out *games.Outcome) {
	if out == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	g := l.game(gid, name)
	if uid != "" {
		g.players[uid] = struct{}{}
	}
	g.totalBet += out.Stake
	g.totalWin += out.Win
	g.rounds++
	if out.Jackpot > 0 {
		g.jackpotHits++
	}
}

func (l *LiveRecorder) Snapshot(gid rules.GID) (LiveSnapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.games[gid]
	if !ok {
		return LiveSnapshot{}, false
	}
	return g.snapshot(gid), true
}

// All 依 GID 排序回傳全部統計
func (l *LiveRecorder) All() []LiveSnapshot {
	l.mu.RLock()
	out := make([]LiveSnapshot, 0, len(l.games))
	for gid, g := range l.games {
		out = append(out, g.snapshot(gid))
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].GID < out[j].GID })
	return out
}

// Revenue 全部遊戲的莊家淨收
func (l *LiveRecorder) Revenue() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum int64
	for _, g := range l.games {
		sum += g.totalBet - g.totalWin
	}
	return sum
}

func (l *LiveRecorder) game(gid rules.GID, name string) *liveGame {
	g, ok := l.games[gid]
	if !ok {
		g = &liveGame{name: name, players: map[string]struct{}{}}
		l.games[gid] = g
	}
	if g.name == "" {
		g.name = name
	}
	return g
}

func (g *liveGame) snapshot(gid rules.GID) LiveSnapshot {
	s := LiveSnapshot{
		GID:         gid,
		Name:        g.name,
		Players:     len(g.players),
		TotalBet:    g.totalBet,
		TotalWin:    g.totalWin,
		Revenue:     g.totalBet - g.totalWin,
		Rounds:      g.rounds,
		JackpotHits: g.jackpotHits,
	}
	if g.totalBet > 0 {
		s.RTP = 100.0 * float64(g.totalWin) / float64(g.totalBet)
	}
	return s
}
