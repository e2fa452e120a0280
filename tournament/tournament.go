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

// Package tournament 錦標賽：報名、計分、排行與派獎。
//
// 狀態由時間推得：StartTime 前為 upcoming，EndTime 前為 active，之後為 finished。
// 分數為比賽期間在同類型遊戲中的贏分總和。
package tournament

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/money"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/wallet"
)

type Type string

const (
	TypeSlots     Type = "slots"
	TypePoker     Type = "poker"
	TypeRoulette  Type = "roulette"
	TypeBlackjack Type = "blackjack"
)

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// PrizeShares 名次獎金比例（%）
var PrizeShares = []int64{30, 20, 15, 10, 5, 3, 2, 1}

var (
	ErrNotFound      = errs.NewNotFound("tournament not found")
	ErrFinished      = errs.NewConflict("tournament already finished")
	ErrFull          = errs.NewConflict("tournament is full")
	ErrAlreadyJoined = errs.NewConflict("already joined")
)

type Tournament struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            Type      `json:"type"`
	Prize           int64     `json:"prize"`
	EntryFee        int64     `json:"entry_fee"`
	MaxParticipants int       `json:"max_participants"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Description     string    `json:"description"`
}

func (t *Tournament) StatusAt(now time.Time) Status {
	switch {
	case now.Before(t.StartTime):
		return StatusUpcoming
	case now.Before(t.EndTime):
		return StatusActive
	default:
		return StatusFinished
	}
}

// TimeLeft 進行中顯示距結束、未開始顯示距開始。
func (t *Tournament) TimeLeft(now time.Time) string {
	switch t.StatusAt(now) {
	case StatusActive:
		return hm(t.EndTime.Sub(now)) + " left"
	case StatusUpcoming:
		return hm(t.StartTime.Sub(now)) + " to start"
	default:
		return "Finished"
	}
}

func hm(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%dh %dm", h, m)
}

func (t *Tournament) valid() error {
	if t.Name == "" || t.Prize <= 0 || t.EntryFee < 0 || t.MaxParticipants <= 0 {
		return errs.NewWarn("invalid tournament")
	}
	if !t.EndTime.After(t.StartTime) {
		return errs.NewWarn("tournament end must be after start")
	}
	return nil
}

// View 對外顯示
type View struct {
	Tournament
	Status       Status `json:"status"`
	Participants int    `json:"participants"`
	TimeLeft     string `json:"time_left"`
	Joined       bool   `json:"joined"`
}

// Entry 排行榜一列
type Entry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
	Prize  int64  `json:"prize"`
}

type participant struct {
	uid   string
	name  string
	score int64
	seq   int
}

type state struct {
	t       Tournament
	players []*participant
	byUID   map[string]*participant
	paid    bool
}

// Board 所有錦標賽，可併發使用。
type Board struct {
	log    *slog.Logger
	wallet *wallet.Wallet
	notes  *notify.Center

	mu    sync.Mutex
	items map[string]*state
	order []string

	now func() time.Time
}

// New notes 可為 nil
func New(log *slog.Logger, w *wallet.Wallet, notes *notify.Center) *Board {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Board{
		log:    log.With("component", "tournament"),
		wallet: w,
		notes:  notes,
		items:  map[string]*state{},
		now:    time.Now,
	}
}

// Seed 以 now 為基準建立預設的四場錦標賽
func Seed(now time.Time) []Tournament {
	h := time.Hour
	return []Tournament{
		{Name: "Slot Mania", Type: TypeSlots, Prize: 500000, EntryFee: 1000, MaxParticipants: 500,
			StartTime: now.Add(-2 * h), EndTime: now.Add(10 * h), Description: "Slot tournament with huge prizes"},
		{Name: "Poker Championship", Type: TypePoker, Prize: 1000000, EntryFee: 5000, MaxParticipants: 200,
			StartTime: now.Add(33 * h), EndTime: now.Add(41 * h), Description: "Texas hold'em tournament for professionals"},
		{Name: "Roulette VIP", Type: TypeRoulette, Prize: 750000, EntryFee: 10000, MaxParticipants: 50,
			StartTime: now.Add(58 * h), EndTime: now.Add(64 * h), Description: "Exclusive tournament for VIP players"},
		{Name: "Blackjack Masters", Type: TypeBlackjack, Prize: 300000, EntryFee: 2000, MaxParticipants: 150,
			StartTime: now.Add(-19 * h), EndTime: now.Add(-11 * h), Description: "Finished blackjack tournament"},
	}
}

// Add 新增錦標賽；ID 為空時自動產生。已結束的場次視為已派獎。
func (b *Board) Add(t Tournament) (Tournament, error) {
	if err := t.valid(); err != nil {
		return t, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[t.ID]; ok {
		return t, errs.NewConflict("tournament id exists")
	}
	b.items[t.ID] = &state{t: t, byUID: map[string]*participant{}, paid: t.StatusAt(b.now()) == StatusFinished}
	b.order = append(b.order, t.ID)
	return t, nil
}

func (b *Board) view(s *state, now time.Time, uid string) View {
	_, joined := s.byUID[uid]
	return View{
		Tournament:   s.t,
		Status:       s.t.StatusAt(now),
		Participants: len(s.players),
		TimeLeft:     s.t.TimeLeft(now),
		Joined:       uid != "" && joined,
	}
}

// List 依加入順序；uid 可為空。
func (b *Board) List(uid string) []View {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]View, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.view(b.items[id], now, uid))
	}
	return out
}

func (b *Board) Get(id, uid string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.items[id]
	if !ok {
		return View{}, ErrNotFound
	}
	return b.view(s, b.now(), uid), nil
}

// Join 報名並扣除報名費；只能在 upcoming 或 active 時報名。
func (b *Board) Join(uid, name, id string) (View, error) {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.items[id]
	if !ok {
		return View{}, ErrNotFound
	}
	switch {
	case s.t.StatusAt(now) == StatusFinished:
		return View{}, ErrFinished
	case s.byUID[uid] != nil:
		return View{}, ErrAlreadyJoined
	case len(s.players) >= s.t.MaxParticipants:
		return View{}, ErrFull
	}
	if s.t.EntryFee > 0 {
		if _, err := b.wallet.Debit(uid, wallet.Entry{Type: wallet.TxEntryFee, Amount: s.t.EntryFee, Ref: s.t.ID}); err != nil {
			return View{}, err
		}
	}
	p := &participant{uid: uid, name: name, seq: len(s.players)}
	s.players = append(s.players, p)
	s.byUID[uid] = p
	b.log.Info("tournament joined", "uid", uid, "tournament", s.t.ID)
	return b.view(s, now, uid), nil
}

// Record 把一局贏分加到玩家所有進行中、同類型且已報名的錦標賽。
func (b *Board) Record(uid string, typ Type, win int64) {
	if win <= 0 {
		return
	}
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.order {
		s := b.items[id]
		if s.t.Type != typ || s.t.StatusAt(now) != StatusActive {
			continue
		}
		if p := s.byUID[uid]; p != nil {
			p.score += win
		}
	}
}

// Leaderboard limit <= 0 回傳全部。
func (b *Board) Leaderboard(id string, limit int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rank(s, limit), nil
}

// rank 分數高者在前，同分先報名者在前；0 分不得獎。
func rank(s *state, limit int) []Entry {
	ps := make([]*participant, len(s.players))
	copy(ps, s.players)
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].score != ps[j].score {
			return ps[i].score > ps[j].score
		}
		return ps[i].seq < ps[j].seq
	})
	if limit <= 0 || limit > len(ps) {
		limit = len(ps)
	}
	out := make([]Entry, 0, limit)
	for i, p := range ps[:limit] {
		e := Entry{Rank: i + 1, Player: p.name, UserID: p.uid, Score: p.score}
		if i < len(PrizeShares) && p.score > 0 {
			e.Prize = s.t.Prize * PrizeShares[i] / 100
		}
		out = append(out, e)
	}
	return out
}

// Finish 結算所有已結束且尚未派獎的錦標賽，回傳結算場數。
func (b *Board) Finish(now time.Time) int {
	b.mu.Lock()
	type payout struct {
		t       Tournament
		board   []Entry
		players []string
	}
	var due []payout
	for _, id := range b.order {
		s := b.items[id]
		if s.paid || s.t.StatusAt(now) != StatusFinished {
			continue
		}
		s.paid = true
		uids := make([]string, 0, len(s.players))
		for _, p := range s.players {
			uids = append(uids, p.uid)
		}
		due = append(due, payout{t: s.t, board: rank(s, len(PrizeShares)), players: uids})
	}
	b.mu.Unlock()

	for _, d := range due {
		prizes := map[string]int64{}
		for _, e := range d.board {
			if e.Prize <= 0 {
				continue
			}
			if _, err := b.wallet.Credit(e.UserID, wallet.Entry{Type: wallet.TxPrize, Amount: e.Prize, Ref: d.t.ID}); err != nil {
				b.log.Error("tournament prize failed", "uid", e.UserID, "tournament", d.t.ID, "err", err)
				continue
			}
			prizes[e.UserID] = e.Prize
		}
		if b.notes != nil {
			for _, uid := range d.players {
				msg := d.t.Name + " has finished."
				if p, ok := prizes[uid]; ok {
					msg += " You won " + money.Format(p) + "!"
				}
				b.notes.Push(uid, notify.KindTournament, "Tournament finished", msg)
			}
		}
		b.log.Info("tournament finished", "tournament", d.t.ID, "players", len(d.players), "winners", len(prizes))
	}
	return len(due)
}
