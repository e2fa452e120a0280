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

package lobby

import (
	"testing"
	"time"

	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/tournament"
	"github.com/zintix-labs/royale/wallet"
)

func newRuntime(t *testing.T) *royale.Runtime {
	t.Helper()
	r, err := royale.NewDefault()
	if err != nil {
		t.Fatalf("new royale: %v", err)
	}
	rt, err := r.BuildRuntime(1)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func TestGamesStatus(t *testing.T) {
	rt := newRuntime(t)
	l, err := New(rt, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := rt.SetMaintenance(1001, true); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	games := l.Games()
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	for _, g := range games {
		switch g.GID {
		case 1001:
			if g.Status != GameMaintenance || g.Jackpot != 0 {
				t.Fatalf("unexpected roulette %+v", g)
			}
		case 2001:
			if g.Status != GameOpen || g.Jackpot <= 0 || len(g.Chips) == 0 {
				t.Fatalf("unexpected slots %+v", g)
			}
		}
	}
	p := l.Page("")
	if len(p.Jackpots) != 1 || p.Jackpot != p.Jackpots[0].Value || p.Tournaments != nil {
		t.Fatalf("unexpected page %+v", p)
	}
}

func TestPageTournaments(t *testing.T) {
	rt := newRuntime(t)
	w := wallet.New(nil, settings.NewStore(settings.Default()))
	if err := w.Open("u1", "u1@example.com", 50000); err != nil {
		t.Fatalf("open: %v", err)
	}
	b := tournament.New(nil, w, nil)
	for _, tr := range tournament.Seed(time.Now()) {
		if _, err := b.Add(tr); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	var slotID string
	for _, v := range b.List("") {
		if v.Type == tournament.TypeSlots {
			slotID = v.ID
		}
	}
	if _, err := b.Join("u1", "Alice", slotID); err != nil {
		t.Fatalf("join: %v", err)
	}
	b.Record("u1", tournament.Type(rules.LogicSlots), 700)

	l, _ := New(rt, b)
	p := l.Page("u1")
	if len(p.Tournaments) != Featured {
		t.Fatalf("expected %d featured, got %d", Featured, len(p.Tournaments))
	}
	for _, v := range p.Tournaments {
		if v.Status == tournament.StatusFinished {
			t.Fatalf("finished tournament featured: %s", v.Name)
		}
	}
	if !p.Tournaments[0].Joined {
		t.Fatalf("expected joined flag for u1")
	}
	if p.LeaderOf != slotID || len(p.Leaderboard) != 1 || p.Leaderboard[0].Score != 700 {
		t.Fatalf("unexpected leaderboard %+v", p.Leaderboard)
	}
}
