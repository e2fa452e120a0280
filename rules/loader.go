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
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/royale/errs"
	"gopkg.in/yaml.v3"
)

func GetGameSettingByYAML(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := yaml.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}
	return gs, nil
}

func GetGameSettingByJSON(data []byte) (*GameSetting, error) {
	gs := &GameSetting{}
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := gs.init(); err != nil {
		return nil, errs.Wrap(err, "game setting initialized err")
	}
	return gs, nil
}

// DecodeFixed 把 map[string]any 形式的 fixed 區塊嚴格解碼成遊戲自己的型別：
// 多寫或拼錯欄位直接報錯，避免企劃改錯設定卻靜默生效。
func DecodeFixed[T any](gs *GameSetting, out *T) error {
	bs, err := yaml.Marshal(gs.Fixed)
	if err != nil {
		return errs.Wrap(err, "rules.fixed_decoder : marshal failed")
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err = dec.Decode(out); err != nil {
		return errs.Wrap(err, "rules.fixed_decoder : decode failed")
	}
	return nil
}
