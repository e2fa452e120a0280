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

// Package rules 定義遊戲設定檔（YAML/JSON）的資料結構與載入時驗證。
//
// 一份 GameSetting 描述一張桌台/一台機台：共用欄位（名稱、ID、押注範圍、籌碼）
// 加上各遊戲自己的 fixed 區塊（輪盤的輪盤表與賠率表、老虎機的圖標權重與彩金）。
// 所有表格都是設定，不寫死在程式內；驗證在載入時一次完成，執行期不再檢查。
package rules

import (
	"fmt"

	"github.com/zintix-labs/royale/errs"
)

// GID 遊戲 ID（Catalog 內唯一）
type GID uint

// LogicKey 對應 games.LogicRegistry 的 builder
type LogicKey string

const (
	LogicRoulette LogicKey = "roulette"
	LogicSlots    LogicKey = "slots"
)

type GameSetting struct {
	GameName    string         `yaml:"game_name"      json:"game_name"`
	GameID      GID            `yaml:"game_id"        json:"game_id"`
	LogicKey    LogicKey       `yaml:"logic_key"      json:"logic_key"`
	Title       string         `yaml:"title"          json:"title"`
	MinBet      int64          `yaml:"min_bet"        json:"min_bet"`
	MaxBet      int64          `yaml:"max_bet"        json:"max_bet"`
	Chips       []int64        `yaml:"chips"          json:"chips"`
	MaxWinLimit int64          `yaml:"max_win_limit"  json:"max_win_limit"`
	Fixed       map[string]any `yaml:"fixed"          json:"fixed"`

	roulette *RouletteFixed
	slot     *SlotFixed
}

func (gs *GameSetting) init() error {
	if err := gs.valid(); err != nil {
		return err
	}
	switch gs.LogicKey {
	case LogicRoulette:
		rf := new(RouletteFixed)
		if err := DecodeFixed(gs, rf); err != nil {
			return err
		}
		if err := rf.init(); err != nil {
			return errs.Wrap(err, fmt.Sprintf("game_name: %s roulette fixed invalid", gs.GameName))
		}
		gs.roulette = rf
	case LogicSlots:
		sf := new(SlotFixed)
		if err := DecodeFixed(gs, sf); err != nil {
			return err
		}
		if err := sf.init(); err != nil {
			return errs.Wrap(err, fmt.Sprintf("game_name: %s slot fixed invalid", gs.GameName))
		}
		gs.slot = sf
	}
	return nil
}

func (gs *GameSetting) valid() error {
	if gs.GameName == "" {
		return errs.NewFatal("empty game_name")
	}
	if gs.GameID == 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:game_id must > 0", gs.GameName))
	}
	if gs.LogicKey == "" {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:empty logic_key", gs.GameName))
	}
	if gs.MinBet < 1 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:min_bet must >= 1", gs.GameName))
	}
	if gs.MaxBet < gs.MinBet {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:max_bet < min_bet", gs.GameName))
	}
	for _, c := range gs.Chips {
		if c < gs.MinBet || c > gs.MaxBet {
			return errs.NewFatal(fmt.Sprintf("game_name: %s err:chip %d out of [min_bet,max_bet]", gs.GameName, c))
		}
	}
	if gs.MaxWinLimit < 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:negative max_win_limit", gs.GameName))
	}
	if gs.Title == "" {
		gs.Title = gs.GameName
	}
	return nil
}

// ValidBet 檢查單筆押注是否落在桌台範圍內。
func (gs *GameSetting) ValidBet(amount int64) error {
	if amount < gs.MinBet {
		return errs.Warnf("bet %d below min bet %d", amount, gs.MinBet)
	}
	if amount > gs.MaxBet {
		return errs.Warnf("bet %d above max bet %d", amount, gs.MaxBet)
	}
	return nil
}

// Roulette 回傳已驗證的輪盤設定；非輪盤遊戲回傳 error。
func (gs *GameSetting) Roulette() (*RouletteFixed, error) {
	if gs.roulette == nil {
		return nil, errs.NewFatal(fmt.Sprintf("game_name: %s is not a roulette game", gs.GameName))
	}
	return gs.roulette, nil
}

// Slot 回傳已驗證的老虎機設定；非老虎機遊戲回傳 error。
func (gs *GameSetting) Slot() (*SlotFixed, error) {
	if gs.slot == nil {
		return nil, errs.NewFatal(fmt.Sprintf("game_name: %s is not a slot game", gs.GameName))
	}
	return gs.slot, nil
}
