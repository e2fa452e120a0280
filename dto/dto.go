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

// Package dto 定義一局的對外輸入/輸出格式（HTTP、Go client 共用）。
package dto

import (
	"encoding/json"
	"time"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// PlayResult 一局的完整結果，含審計用的 Core 快照。
type PlayResult struct {
	RoundID  string         `json:"round_id"`
	GameName string         `json:"game"`
	GameID   rules.GID      `json:"gid"`
	Logic    rules.LogicKey `json:"logic"`
	Stake    int64          `json:"stake"`
	Win      int64          `json:"win"`
	Jackpot  int64          `json:"jackpot,omitempty"`
	Detail   any            `json:"detail"`
	State    SpinState      `json:"state"`
	Balance  int64          `json:"balance"`
	PlayedAt time.Time      `json:"played_at"`
}

// SpinState 一局前後的 Core 快照（URL-safe base64）。
type SpinState struct {
	StartB64U string `json:"start_b64u"`
	AfterB64U string `json:"after_b64u"`
}

// NewPlayResult 由引擎結果與前後快照組成對外結果；Balance 與 RoundID 由上層補上。
func NewPlayResult(gs *rules.GameSetting, out *games.Outcome, start, after []byte) (*PlayResult, error) {
	if gs == nil || out == nil {
		return nil, errs.NewFatal("nil setting or outcome")
	}
	return &PlayResult{
		GameName: gs.GameName,
		GameID:   gs.GameID,
		Logic:    gs.LogicKey,
		Stake:    out.Stake,
		Win:      out.Win,
		Jackpot:  out.Jackpot,
		Detail:   out.Detail,
		State: SpinState{
			StartB64U: core.EncodeSnap(start),
			AfterB64U: core.EncodeSnap(after),
		},
		PlayedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalJSON 依 Logic 把 detail 還原成已註冊的型別；未註冊時保留為 map。
func (pr *PlayResult) UnmarshalJSON(b []byte) error {
	type alias PlayResult
	aux := struct {
		*alias
		Detail json.RawMessage `json:"detail"`
	}{alias: (*alias)(pr)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	d, err := decodeDetail(pr.Logic, aux.Detail)
	if err != nil {
		return err
	}
	pr.Detail = d
	return nil
}
