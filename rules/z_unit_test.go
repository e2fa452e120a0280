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

package rules_test

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/royale/configs"
	"github.com/zintix-labs/royale/rules"
)

func load(t *testing.T, name string) *rules.GameSetting {
	t.Helper()
	raw, err := fs.ReadFile(configs.FS, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	gs, err := rules.GetGameSettingByYAML(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return gs
}

func TestEmbeddedRoulette(t *testing.T) {
	gs := load(t, "roulette_eu.yaml")
	if gs.GameID != 1001 || gs.LogicKey != rules.LogicRoulette {
		t.Fatalf("unexpected header: %+v", gs)
	}
	rf, err := gs.Roulette()
	if err != nil {
		t.Fatalf("roulette fixed: %v", err)
	}
	if len(rf.Wheel) != rules.WheelSize {
		t.Fatalf("expected %d pockets, got %d", rules.WheelSize, len(rf.Wheel))
	}
	if rf.ColorOf(0) != rules.Green || rf.ColorOf(32) != rules.Red || rf.ColorOf(26) != rules.Black {
		t.Fatalf("unexpected colors")
	}
	if p, ok := rf.Payout(rules.BetStraight); !ok || p != 35 {
		t.Fatalf("straight payout: %d %v", p, ok)
	}
	if p, ok := rf.Payout(rules.BetDozen2); !ok || p != 2 {
		t.Fatalf("dozen payout: %d %v", p, ok)
	}
	if rf.History != 10 {
		t.Fatalf("history: %d", rf.History)
	}
	if _, err := gs.Slot(); err == nil {
		t.Fatalf("roulette should not expose slot fixed")
	}
}

func TestEmbeddedSlot(t *testing.T) {
	gs := load(t, "golden_fruits.yaml")
	sf, err := gs.Slot()
	if err != nil {
		t.Fatalf("slot fixed: %v", err)
	}
	if sf.Reels != 3 || sf.Rows != 3 || sf.PayRow != 1 {
		t.Fatalf("unexpected screen: %+v", sf)
	}
	if !sf.HasJackpot() || sf.Jackpot.Seed != 2547890 {
		t.Fatalf("unexpected jackpot: %+v", sf.Jackpot)
	}
	if sf.Jackpot.GrowEvery != 5*time.Second {
		t.Fatalf("grow_every: %v", sf.Jackpot.GrowEvery)
	}
	if i, ok := sf.SymbolIndex("seven"); !ok || sf.Symbols[i].Multiplier != 50 {
		t.Fatalf("seven lookup failed")
	}
}

func TestGameSettingValidation(t *testing.T) {
	base := `
game_name: t
game_id: 1
logic_key: other
min_bet: 10
max_bet: 100
`
	tests := []struct {
		name string
		yaml string
	}{
		{"empty name", strings.Replace(base, "game_name: t", "game_name: \"\"", 1)},
		{"zero id", strings.Replace(base, "game_id: 1", "game_id: 0", 1)},
		{"min bet", strings.Replace(base, "min_bet: 10", "min_bet: 0", 1)},
		{"max below min", strings.Replace(base, "max_bet: 100", "max_bet: 5", 1)},
		{"chip out of range", base + "chips: [5]\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := rules.GetGameSettingByYAML([]byte(tc.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	gs, err := rules.GetGameSettingByYAML([]byte(base))
	if err != nil {
		t.Fatalf("valid setting rejected: %v", err)
	}
	if gs.Title != "t" {
		t.Fatalf("title should default to game name")
	}
	if err := gs.ValidBet(9); err == nil {
		t.Fatalf("bet below min accepted")
	}
	if err := gs.ValidBet(101); err == nil {
		t.Fatalf("bet above max accepted")
	}
	if err := gs.ValidBet(50); err != nil {
		t.Fatalf("valid bet rejected: %v", err)
	}
}

func TestSlotFixedValidation(t *testing.T) {
	head := `
game_name: s
game_id: 2
logic_key: slots
min_bet: 1
max_bet: 10
fixed:
`
	tests := []struct {
		name  string
		fixed string
	}{
		{"unknown field", "  reels: 3\n  rows: 3\n  pay_row: 1\n  typo: 1\n  symbols: [{id: a, weight: 1, multiplier: 2}]\n"},
		{"pay row", "  reels: 3\n  rows: 3\n  pay_row: 3\n  symbols: [{id: a, weight: 1, multiplier: 2}]\n"},
		{"zero weights", "  reels: 3\n  rows: 3\n  pay_row: 1\n  symbols: [{id: a, weight: 0, multiplier: 2}]\n"},
		{"dup symbol", "  reels: 3\n  rows: 3\n  pay_row: 1\n  symbols: [{id: a, weight: 1}, {id: a, weight: 1}]\n"},
		{"missing jackpot symbol", "  reels: 3\n  rows: 3\n  pay_row: 1\n  symbols: [{id: a, weight: 1}]\n  jackpot: {symbol: b, seed: 10}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := rules.GetGameSettingByYAML([]byte(head + tc.fixed)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestRouletteFixedValidation(t *testing.T) {
	raw, err := fs.ReadFile(configs.FS, "roulette_eu.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	broken := strings.Replace(string(raw), "{ number: 0, color: green }", "{ number: 0, color: red }", 1)
	if _, err := rules.GetGameSettingByYAML([]byte(broken)); err == nil {
		t.Fatalf("expected error for red zero")
	}
	dup := strings.Replace(string(raw), "{ number: 26, color: black }", "{ number: 3, color: black }", 1)
	if _, err := rules.GetGameSettingByYAML([]byte(dup)); err == nil {
		t.Fatalf("expected error for duplicate pocket")
	}
	unknown := strings.Replace(string(raw), "type: dozen3", "type: corner", 1)
	if _, err := rules.GetGameSettingByYAML([]byte(unknown)); err == nil {
		t.Fatalf("expected error for unknown bet type")
	}
}

func TestJSONSetting(t *testing.T) {
	raw := `{"game_name":"j","game_id":3,"logic_key":"slots","min_bet":1,"max_bet":5,
"fixed":{"reels":3,"rows":1,"pay_row":0,"symbols":[{"id":"x","weight":1,"multiplier":3}],
"jackpot":{"symbol":"x","seed":100,"grow_min":1,"grow_max":2,"grow_every":"1s"}}}`
	gs, err := rules.GetGameSettingByJSON([]byte(raw))
	if err != nil {
		t.Fatalf("json setting: %v", err)
	}
	sf, _ := gs.Slot()
	if sf.Jackpot.GrowEvery != time.Second {
		t.Fatalf("grow_every from json: %v", sf.Jackpot.GrowEvery)
	}
}
