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
	"time"

	"github.com/zintix-labs/royale/errs"
)

// SymbolRule 一個圖標：權重決定每格出現機率，倍數決定中線三連的獎金。
type SymbolRule struct {
	ID         string `yaml:"id"         json:"id"`
	Glyph      string `yaml:"glyph"      json:"glyph"`
	Weight     int    `yaml:"weight"     json:"weight"`
	Multiplier int64  `yaml:"multiplier" json:"multiplier"`
}

// JackpotRule 累積彩金：由 Seed 起跳，每 GrowEvery 增加 [GrowMin, GrowMax]，中獎後回到 Seed。
type JackpotRule struct {
	Symbol    string        `yaml:"symbol"`
	Seed      int64         `yaml:"seed"`
	GrowMin   int64         `yaml:"grow_min"`
	GrowMax   int64         `yaml:"grow_max"`
	GrowEvery time.Duration `yaml:"grow_every"`
}

// SlotFixed 老虎機的 fixed 區塊。
type SlotFixed struct {
	Reels   int          `yaml:"reels"`
	Rows    int          `yaml:"rows"`
	PayRow  int          `yaml:"pay_row"`
	Symbols []SymbolRule `yaml:"symbols"`
	Jackpot JackpotRule  `yaml:"jackpot"`

	index map[string]int
}

func (sf *SlotFixed) init() error {
	if sf.Reels < 1 || sf.Rows < 1 {
		return errs.NewFatal(fmt.Sprintf("invalid screen dimensions: reels=%d rows=%d", sf.Reels, sf.Rows))
	}
	if sf.PayRow < 0 || sf.PayRow >= sf.Rows {
		return errs.NewFatal(fmt.Sprintf("pay_row %d out of rows %d", sf.PayRow, sf.Rows))
	}
	if len(sf.Symbols) == 0 {
		return errs.NewFatal("empty symbols")
	}
	sf.index = make(map[string]int, len(sf.Symbols))
	total := 0
	for i, s := range sf.Symbols {
		if s.ID == "" {
			return errs.NewFatal(fmt.Sprintf("symbol[%d] empty id", i))
		}
		if _, dup := sf.index[s.ID]; dup {
			return errs.NewFatal(fmt.Sprintf("duplicate symbol id: %s", s.ID))
		}
		if s.Weight < 0 {
			return errs.NewFatal(fmt.Sprintf("symbol %s negative weight", s.ID))
		}
		if s.Multiplier < 0 {
			return errs.NewFatal(fmt.Sprintf("symbol %s negative multiplier", s.ID))
		}
		sf.index[s.ID] = i
		total += s.Weight
	}
	if total == 0 {
		return errs.NewFatal("all symbol weights are zero")
	}

	jp := &sf.Jackpot
	if jp.Symbol != "" {
		if _, ok := sf.index[jp.Symbol]; !ok {
			return errs.NewFatal(fmt.Sprintf("jackpot symbol %s not in symbols", jp.Symbol))
		}
		if jp.Seed < 1 {
			return errs.NewFatal("jackpot seed must >= 1")
		}
		if jp.GrowMin < 0 || jp.GrowMax < jp.GrowMin {
			return errs.NewFatal("jackpot grow range invalid")
		}
		if jp.GrowEvery <= 0 {
			jp.GrowEvery = 5 * time.Second
		}
	}
	return nil
}

// SymbolIndex 回傳圖標在 Symbols 中的索引。
func (sf *SlotFixed) SymbolIndex(id string) (int, bool) {
	i, ok := sf.index[id]
	return i, ok
}

// HasJackpot 是否設定了累積彩金圖標。
func (sf *SlotFixed) HasJackpot() bool {
	return sf.Jackpot.Symbol != ""
}
