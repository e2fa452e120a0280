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
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// MaxBody 單一 JSON 請求的大小上限。
const MaxBody = 1 << 20

// PlayRequest 一局的請求。
//
// UID 由伺服器依登入身分填入，JSON 中的值會被覆蓋。
// StartB64U 只在回放時使用：帶入某局記錄的 start 快照即可重現該局。
type PlayRequest struct {
	UID       string           `json:"uid,omitempty"`
	GameID    rules.GID        `json:"gid"`
	Bet       int64            `json:"bet,omitempty"`
	Bets      []games.BetInput `json:"bets,omitempty"`
	StartB64U string           `json:"start_b64u,omitempty"`
}

// Game 轉成引擎請求。
func (pr *PlayRequest) Game() *games.Request {
	return &games.Request{Bet: pr.Bet, Bets: pr.Bets}
}

// StartSnap 解碼回放快照；未提供時回傳 nil。
func (pr *PlayRequest) StartSnap() ([]byte, error) {
	if pr.StartB64U == "" {
		return nil, nil
	}
	b, err := core.DecodeSnap(pr.StartB64U)
	if err != nil {
		return nil, errs.NewWarn("core snap decode failed: " + err.Error())
	}
	return b, nil
}

// DecodePlayRequest 解碼一局請求。
//
//   - GET：只支援老虎機的簡單參數（gid, bet）。
//   - POST：JSON body，未知欄位直接拒絕。
func DecodePlayRequest(r *http.Request) (*PlayRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(PlayRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.Warnf("invalid gid: %v", err)
			}
			req.GameID = rules.GID(u)
		}
		if s := q.Get("bet"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.Warnf("invalid bet: %v", err)
			}
			req.Bet = v
		}
		return req, nil
	case http.MethodPost:
		if err := DecodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeJSON 以嚴格模式解碼 body 到 v：限制大小、拒絕未知欄位、只允許單一 JSON 值。
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewWarn("empty body")
		}
		return errs.NewWarn("invalid json: " + err.Error())
	}
	if dec.More() {
		return errs.NewWarn("invalid json: trailing data")
	}
	return nil
}
