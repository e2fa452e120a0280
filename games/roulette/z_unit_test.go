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

package roulette_test

import (
	"io/fs"
	"testing"

	"github.com/zintix-labs/royale/configs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/games/roulette"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

func setting(t *testing.T) (*rules.GameSetting, *rules.RouletteFixed) {
	t.Helper()
	raw, err := fs.ReadFile(configs.FS, "roulette_eu.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	gs, err := rules.GetGameSettingByYAML(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rf, err := gs.Roulette()
	if err != nil {
		t.Fatalf("roulette: %v", err)
	}
	return gs, rf
}

func pocket(rf *rules.RouletteFixed, n int) rules.Pocket {
	return rules.Pocket{Number: n, Color: rf.ColorOf(n)}
}

func TestWinsTable(t *testing.T) {
	_, rf := setting(t)
	cases := []struct {
		bet  roulette.Bet
		n    int
		want bool
	}{
		{roulette.Bet{Type: rules.BetStraight, Number: 17}, 17, true},
		{roulette.Bet{Type: rules.BetStraight, Number: 17}, 18, false},
		{roulette.Bet{Type: rules.BetStraight, Number: 0}, 0, true},
		{roulette.Bet{Type: rules.BetRed}, 32, true},
		{roulette.Bet{Type: rules.BetRed}, 15, false},
		{roulette.Bet{Type: rules.BetBlack}, 15, true},
		{roulette.Bet{Type: rules.BetRed}, 0, false},
		{roulette.Bet{Type: rules.BetBlack}, 0, false},
		{roulette.Bet{Type: rules.BetEven}, 0, false},
		{roulette.Bet{Type: rules.BetOdd}, 0, false},
		{roulette.Bet{Type: rules.BetEven}, 36, true},
		{roulette.Bet{Type: rules.BetOdd}, 35, true},
		{roulette.Bet{Type: rules.BetLow}, 18, true},
		{roulette.Bet{Type: rules.BetLow}, 19, false},
		{roulette.Bet{Type: rules.BetHigh}, 19, true},
		{roulette.Bet{Type: rules.BetHigh}, 0, false},
		{roulette.Bet{Type: rules.BetDozen1}, 12, true},
		{roulette.Bet{Type: rules.BetDozen2}, 13, true},
		{roulette.Bet{Type: rules.BetDozen2}, 25, false},
		{roulette.Bet{Type: rules.BetDozen3}, 36, true},
		{roulette.Bet{Type: rules.BetDozen3}, 0, false},
	}
	for _, c := range cases {
		if got := roulette.Wins(c.bet, pocket(rf, c.n)); got != c.want {
			t.Fatalf("%s/%d on %d: got %v want %v", c.bet.Type, c.bet.Number, c.n, got, c.want)
		}
	}
}

func TestSettleSinglePass(t *testing.T) {
	_, rf := setting(t)
	bets := []roulette.Bet{
		{Type: rules.BetStraight, Number: 7, Amount: 100},
		{Type: rules.BetRed, Amount: 200},
		{Type: rules.BetOdd, Amount: 50},
		{Type: rules.BetDozen3, Amount: 30},
	}
	// 7 紅單，第一打
	win, res := roulette.Settle(rf, bets, pocket(rf, 7))
	want := int64(100*36 + 200*2 + 50*2)
	if win != want {
		t.Fatalf("win=%d want %d", win, want)
	}
	if len(res) != len(bets) {
		t.Fatalf("expected one result per bet")
	}
	var sum int64
	for _, r := range res {
		sum += r.Win
		if r.Won && r.Win != r.Amount*(r.Payout+1) {
			t.Fatalf("bad pay for %s", r.Type)
		}
		if !r.Won && r.Win != 0 {
			t.Fatalf("lost bet paid %d", r.Win)
		}
	}
	if sum != win {
		t.Fatalf("sum of results %d != total %d", sum, win)
	}
	if w, _ := roulette.Settle(rf, bets, pocket(rf, 0)); w != 0 {
		t.Fatalf("zero should lose every outside bet, got %d", w)
	}
}

func TestWinLimitKeepsBetSum(t *testing.T) {
	gs, rf := setting(t)
	bets := []roulette.Bet{
		{Type: rules.BetStraight, Number: 7, Amount: 100},
		{Type: rules.BetRed, Amount: 200},
		{Type: rules.BetOdd, Amount: 50},
	}
	_, res := roulette.Settle(rf, bets, pocket(rf, 7))
	if got := roulette.CapResults(3700, res); got != 3700 {
		t.Fatalf("capped total %d", got)
	}
	if res[0].Win != 3600 || res[1].Win != 100 || res[2].Win != 0 {
		t.Fatalf("capped results %+v", res)
	}

	capped := *gs
	capped.MaxWinLimit = 150
	eng, err := roulette.Build(&games.Env{Setting: &capped, Core: core.New(core.Default().New(4)), Shared: games.NewShared()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	req := &games.Request{Bets: []games.BetInput{{Type: "straight", Number: 7, Amount: 100}, {Type: "red", Amount: 100}, {Type: "low", Amount: 100}}}
	for i := 0; i < 500; i++ {
		out, err := eng.Play(req)
		if err != nil {
			t.Fatalf("play: %v", err)
		}
		var sum int64
		for _, r := range out.Detail.(*roulette.Result).Bets {
			sum += r.Win
		}
		if out.Win > 150 || sum != out.Win {
			t.Fatalf("win %d, sum of bets %d", out.Win, sum)
		}
	}
}

func TestNormalizeMerges(t *testing.T) {
	gs, rf := setting(t)
	in := []games.BetInput{
		{Type: "red", Amount: 100},
		{Type: "straight", Number: 5, Amount: 100},
		{Type: "red", Amount: 500},
		{Type: "straight", Number: 5, Amount: 1000},
		{Type: "straight", Number: 6, Amount: 100},
	}
	bets, err := roulette.Normalize(gs, rf, in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(bets) != 3 {
		t.Fatalf("expected 3 merged bets, got %+v", bets)
	}
	if bets[0].Type != rules.BetRed || bets[0].Amount != 600 {
		t.Fatalf("red merge wrong: %+v", bets[0])
	}
	if bets[1].Number != 5 || bets[1].Amount != 1100 {
		t.Fatalf("straight merge wrong: %+v", bets[1])
	}
	if roulette.Total(bets) != 1800 {
		t.Fatalf("total=%d", roulette.Total(bets))
	}
}

func TestNormalizeRejects(t *testing.T) {
	gs, rf := setting(t)
	bad := [][]games.BetInput{
		nil,
		{{Type: "corner", Amount: 100}},
		{{Type: "red", Amount: 0}},
		{{Type: "red", Amount: 5}},
		{{Type: "red", Amount: 600000}},
		{{Type: "straight", Number: 37, Amount: 100}},
		{{Type: "straight", Number: -1, Amount: 100}},
		{{Type: "red", Number: 3, Amount: 100}},
	}
	for i, in := range bad {
		if _, err := roulette.Normalize(gs, rf, in); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestEngineDeterministic(t *testing.T) {
	gs, _ := setting(t)
	play := func() []int {
		env := &games.Env{Setting: gs, Core: core.New(core.Default().New(42)), Shared: games.NewShared()}
		eng, err := roulette.Build(env)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		out := make([]int, 0, 20)
		for i := 0; i < 20; i++ {
			o, err := eng.Play(&games.Request{Bets: []games.BetInput{{Type: "black", Amount: 100}}})
			if err != nil {
				t.Fatalf("play: %v", err)
			}
			r := o.Detail.(*roulette.Result)
			if o.Stake != 100 {
				t.Fatalf("stake=%d", o.Stake)
			}
			if (r.Pocket.Color == rules.Black) != (o.Win == 200) {
				t.Fatalf("pocket %+v win %d", r.Pocket, o.Win)
			}
			out = append(out, r.Pocket.Number)
		}
		return out
	}
	a, b := play(), play()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
	}
}

func TestSpinUniform(t *testing.T) {
	_, rf := setting(t)
	c := core.New(core.Default().New(7))
	counts := make([]int, rules.WheelSize)
	const n = 370000
	for i := 0; i < n; i++ {
		counts[roulette.Spin(c, rf).Number]++
	}
	for num, k := range counts {
		if k < 9000 || k > 11000 {
			t.Fatalf("pocket %d count %d far from uniform", num, k)
		}
	}
}

func TestHistoryRing(t *testing.T) {
	h := roulette.NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(rules.Pocket{Number: i})
	}
	got := h.Last()
	if len(got) != 3 || got[0].Number != 5 || got[2].Number != 3 {
		t.Fatalf("unexpected history %+v", got)
	}
	s := games.NewShared()
	if _, ok := roulette.LookupHistory(s, 1001); ok {
		t.Fatalf("history should not exist yet")
	}
	a := roulette.HistoryOf(s, 1001, 10)
	b := roulette.HistoryOf(s, 1001, 10)
	if a != b {
		t.Fatalf("history must be shared per gid")
	}
}
