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

package rules

import (
	"fmt"

	"github.com/zintix-labs/royale/errs"
)

// WheelSize 歐式輪盤格數（0..36）
const WheelSize = 37

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

// BetType 輪盤押注種類
type BetType string

const (
	BetStraight BetType = "straight"
	BetRed      BetType = "red"
	BetBlack    BetType = "black"
	BetEven     BetType = "even"
	BetOdd      BetType = "odd"
	BetLow      BetType = "low"
	BetHigh     BetType = "high"
	BetDozen1   BetType = "dozen1"
	BetDozen2   BetType = "dozen2"
	BetDozen3   BetType = "dozen3"
)

var betTypes = map[BetType]struct{}{
	BetStraight: {}, BetRed: {}, BetBlack: {}, BetEven: {}, BetOdd: {},
	BetLow: {}, BetHigh: {}, BetDozen1: {}, BetDozen2: {}, BetDozen3: {},
}

func ParseBetType(s string) (BetType, bool) {
	_, ok := betTypes[BetType(s)]
	return BetType(s), ok
}

type Pocket struct {
	Number int   `yaml:"number" json:"number"`
	Color  Color `yaml:"color"  json:"color"`
}

type BetRule struct {
	Type   BetType `yaml:"type"   json:"type"`
	Name   string  `yaml:"name"   json:"name"`
	Payout int64   `yaml:"payout" json:"payout"`
}

// RouletteFixed 輪盤桌台的 fixed 區塊：輪盤順序表、賠率表、歷史保留數量。
type RouletteFixed struct {
	Wheel   []Pocket  `yaml:"wheel"`
	Bets    []BetRule `yaml:"bets"`
	History int       `yaml:"history"`

	colorOf [WheelSize]Color
	payout  map[BetType]int64
}

func (rf *RouletteFixed) init() error {
	if len(rf.Wheel) != WheelSize {
		return errs.NewFatal(fmt.Sprintf("wheel must have %d pockets, got %d", WheelSize, len(rf.Wheel)))
	}
	seen := [WheelSize]bool{}
	for _, p := range rf.Wheel {
		if p.Number < 0 || p.Number >= WheelSize {
			return errs.NewFatal(fmt.Sprintf("pocket number out of range: %d", p.Number))
		}
		if seen[p.Number] {
			return errs.NewFatal(fmt.Sprintf("duplicate pocket number: %d", p.Number))
		}
		seen[p.Number] = true
		switch {
		case p.Number == 0 && p.Color != Green:
			return errs.NewFatal("pocket 0 must be green")
		case p.Number != 0 && p.Color != Red && p.Color != Black:
			return errs.NewFatal(fmt.Sprintf("pocket %d must be red or black", p.Number))
		}
		rf.colorOf[p.Number] = p.Color
	}

	if len(rf.Bets) == 0 {
		return errs.NewFatal("empty bets table")
	}
	rf.payout = make(map[BetType]int64, len(rf.Bets))
	for _, b := range rf.Bets {
		if _, ok := ParseBetType(string(b.Type)); !ok {
			return errs.NewFatal(fmt.Sprintf("unknown bet type: %q", b.Type))
		}
		if _, dup := rf.payout[b.Type]; dup {
			return errs.NewFatal(fmt.Sprintf("duplicate bet type: %q", b.Type))
		}
		if b.Payout < 1 {
			return errs.NewFatal(fmt.Sprintf("bet type %q payout must >= 1", b.Type))
		}
		rf.payout[b.Type] = b.Payout
	}

	if rf.History <= 0 {
		rf.History = 10
	}
	return nil
}

// ColorOf 回傳號碼的顏色，超出範圍回傳空字串。
func (rf *RouletteFixed) ColorOf(n int) Color {
	if n < 0 || n >= WheelSize {
		return ""
	}
	return rf.colorOf[n]
}

// Payout 回傳押注種類的賠率（不含本金），未開放的種類回傳 false。
func (rf *RouletteFixed) Payout(t BetType) (int64, bool) {
	p, ok := rf.payout[t]
	return p, ok
}
