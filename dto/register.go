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

package dto

import (
	"encoding/json"
	"sync"

	"github.com/zintix-labs/royale/rules"
)

var (
	detailMu    sync.RWMutex
	detailTypes = map[rules.LogicKey]func(json.RawMessage) (any, error){}
)

// RegisterDetail 註冊某 LogicKey 的 Outcome.Detail 型別，T 為結構本身（解碼後回傳 *T）。
func RegisterDetail[T any](lkey rules.LogicKey) {
	detailMu.Lock()
	defer detailMu.Unlock()
	detailTypes[lkey] = func(raw json.RawMessage) (any, error) {
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func decodeDetail(lkey rules.LogicKey, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	detailMu.RLock()
	fn, ok := detailTypes[lkey]
	detailMu.RUnlock()
	if ok {
		return fn(raw)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
