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

package tournament

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
)

var t0 = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newBoard(t *testing.T, users ...string) (*Board, *wallet.Wallet, *notify.Center) {
	t.Helper()
	w := wallet.New(nil, settings.NewStore(settings.Default()))
	for _, u := range users {
		if err := w.Open(u, u+"@example.com", 20000); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	notes := notify.New(nil)
	b := New(nil, w, notes)
	b.now = func() time.Time { return t0 }
	for _, tr := range Seed(t0) {
		if _, err := b.Add(tr); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return b, w, notes
}

func byName(t *testing.T, b *Board, name string) View {
	t.Helper()
	for _, v := range b.List("") {
		if v.Name == name {
			return v
		}
	}
	t.Fatalf("tournament %s not found", name)
	return View{}
}

func TestStatusAndTimeLeft(t *testing.T) {
	b, _, _ := newBoard(t)
	want := map[string]Status{
		"Slot Mania":         StatusActive,
		"Poker Championship": StatusUpcoming,
		"Roulette VIP":       StatusUpcoming,
		"Blackjack Masters":  StatusFinished,
	}
	for name, st := range want {
		if v := byName(t, b, name); v.Status != st {
			t.Fatalf("%s status=%s want %s", name, v.Status, st)
		}
	}
	if v := byName(t, b, "Slot Mania"); v.TimeLeft != "10h 0m left" {
		t.Fatalf("time left=%q", v.TimeLeft)
	}
	if v := byName(t, b, "Poker Championship"); v.TimeLeft != "33h 0m to start" {
		t.Fatalf("time left=%q", v.TimeLeft)
	}
	if v := byName(t, b, "Blackjack Masters"); v.TimeLeft != "Finished" {
		t.Fatalf("time left=%q", v.TimeLeft)
	}
}

func TestJoinRules(t *testing.T) {
	b, w, _ := newBoard(t, "u1", "poor")
	slot := byName(t, b, "Slot Mania")
	v, err := b.Join("u1", "Ivan", slot.ID)
	if err != nil || !v.Joined || v.Participants != 1 {
		t.Fatalf("join v=%+v err=%v", v, err)
	}
	if bal, _ := w.Balance("u1"); bal != 19000 {
		t.Fatalf("entry fee not charged, balance=%d", bal)
	}
	if _, err := b.Join("u1", "Ivan", slot.ID); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected already joined, got %v", err)
	}
	if _, err := b.Join("u1", "Ivan", byName(t, b, "Blackjack Masters").ID); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected finished, got %v", err)
	}
	if _, err := b.Join("u1", "Ivan", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// 報名費 10000，餘額 20000 可報名 upcoming 場次
	if _, err := b.Join("u1", "Ivan", byName(t, b, "Roulette VIP").ID); err != nil {
		t.Fatalf("upcoming join: %v", err)
	}
	_, _ = w.Debit("poor", wallet.Entry{Type: wallet.TxWithdraw, Amount: 19500})
	if _, err := b.Join("poor", "Poor", slot.ID); !errors.Is(err, wallet.ErrInsufficient) {
		t.Fatalf("expected insufficient, got %v", err)
	}

	small, _ := b.Add(Tournament{Name: "Tiny", Type: TypeSlots, Prize: 100, MaxParticipants: 1, StartTime: t0, EndTime: t0.Add(time.Hour)})
	if _, err := b.Join("u1", "Ivan", small.ID); err != nil {
		t.Fatalf("join tiny: %v", err)
	}
	if _, err := b.Join("poor", "Poor", small.ID); !errors.Is(err, ErrFull) {
		t.Fatalf("expected full, got %v", err)
	}
	if _, err := b.Add(Tournament{Name: "Bad", Prize: 1, MaxParticipants: 1, StartTime: t0, EndTime: t0}); err == nil {
		t.Fatalf("expected invalid tournament")
	}
}

func TestLeaderboardAndFinish(t *testing.T) {
	users := make([]string, 10)
	for i := range users {
		users[i] = fmt.Sprintf("u%d", i)
	}
	b, w, notes := newBoard(t, users...)
	slot := byName(t, b, "Slot Mania")
	for i, u := range users {
		if _, err := b.Join(u, "P"+u, slot.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
		if i < 9 {
			b.Record(u, TypeSlots, int64(100*(i%5+1)))
		}
	}
	b.Record("u0", TypeRoulette, 99999) // 類型不符不計分
	b.Record("u1", TypeSlots, -5)

	lb, err := b.Leaderboard(slot.ID, 0)
	if err != nil || len(lb) != 10 {
		t.Fatalf("leaderboard len=%d err=%v", len(lb), err)
	}
	// u3 與 u8 同為 400，先報名的 u3 在前
	if lb[0].UserID != "u4" || lb[0].Score != 500 || lb[1].UserID != "u3" {
		t.Fatalf("unexpected ranking %+v", lb[:3])
	}
	if lb[0].Prize != 150000 || lb[1].Prize != 100000 || lb[7].Prize != 5000 {
		t.Fatalf("unexpected prizes %+v", lb)
	}
	if lb[9].UserID != "u9" || lb[9].Score != 0 || lb[9].Prize != 0 {
		t.Fatalf("last place %+v", lb[9])
	}
	if top, _ := b.Leaderboard(slot.ID, 3); len(top) != 3 {
		t.Fatalf("limit not applied")
	}

	if n := b.Finish(t0); n != 0 {
		t.Fatalf("nothing should finish yet, got %d", n)
	}
	end := t0.Add(11 * time.Hour)
	if n := b.Finish(end); n != 1 {
		t.Fatalf("expected 1 finished, got %d", n)
	}
	if n := b.Finish(end); n != 0 {
		t.Fatalf("finish must be idempotent")
	}
	if bal, _ := w.Balance("u4"); bal != 20000-1000+150000 {
		t.Fatalf("prize not credited, balance=%d", bal)
	}
	if got := notes.List("u9"); len(got) != 1 {
		t.Fatalf("participants should be notified, got %d", len(got))
	}
}

func TestScheduler(t *testing.T) {
	b, _, _ := newBoard(t)
	s := NewScheduler(b, time.Millisecond)
	go func() { _ = s.Run() }()
	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
