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

package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/rules"
)

// optionalUser 公開頁面可帶 token 取得個人化資料；token 無效時視為訪客。
func (h *Handler) optionalUser(r *http.Request) string {
	raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if raw == "" {
		return ""
	}
	u, err := h.d.Accounts.Authenticate(raw)
	if err != nil {
		return ""
	}
	return u.ID
}

// Lobby GET /v1/lobby
func (h *Handler) Lobby(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, h.d.Lobby.Page(h.optionalUser(r)))
}

// Games GET /v1/games
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, map[string]any{"games": h.d.Lobby.Games()})
}

// spin 路徑決定 gid；body 帶的 gid 必須一致。
func (h *Handler) spin(w http.ResponseWriter, r *http.Request, logic rules.LogicKey) {
	gid, err := pathGID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req := new(dto.PlayRequest)
	if err := dto.DecodeJSON(r, req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.GameID != 0 && req.GameID != gid {
		h.fail(w, r, errs.NewWarn("gid in body does not match path"))
		return
	}
	if req.StartB64U != "" {
		h.fail(w, r, errs.NewWarn("start_b64u is not accepted on live play"))
		return
	}
	req.GameID = gid

	ctx, cancel := context.WithTimeout(r.Context(), SpinTimeout)
	defer cancel()
	res, err := h.d.Dealer.Spin(ctx, user(r).ID, logic, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, res)
}

// RouletteSpin POST /v1/games/roulette/{gid}/spin
func (h *Handler) RouletteSpin(w http.ResponseWriter, r *http.Request) {
	h.spin(w, r, rules.LogicRoulette)
}

// SlotsSpin POST /v1/games/slots/{gid}/spin
func (h *Handler) SlotsSpin(w http.ResponseWriter, r *http.Request) {
	h.spin(w, r, rules.LogicSlots)
}

// checkLogic 確認 gid 屬於路徑上的遊戲類型
func (h *Handler) checkLogic(r *http.Request, logic rules.LogicKey) (rules.GID, error) {
	gid, err := pathGID(r)
	if err != nil {
		return 0, err
	}
	gs, err := h.d.Runtime.Setting(gid)
	if err != nil || gs.LogicKey != logic {
		return 0, errs.NewNotFound("game not found")
	}
	return gid, nil
}

// RouletteHistory GET /v1/games/roulette/{gid}/history
func (h *Handler) RouletteHistory(w http.ResponseWriter, r *http.Request) {
	gid, err := h.checkLogic(r, rules.LogicRoulette)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pockets, err := h.d.Runtime.History(gid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"gid": gid, "history": pockets})
}

// SlotsJackpot GET /v1/games/slots/{gid}/jackpot
func (h *Handler) SlotsJackpot(w http.ResponseWriter, r *http.Request) {
	gid, err := h.checkLogic(r, rules.LogicSlots)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jp, err := h.d.Runtime.Jackpot(gid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"gid": gid, "value": jp.Value()})
}

// VerifyRound GET /v1/rounds/{id}/verify
func (h *Handler) VerifyRound(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	v, err := h.d.Dealer.Verify(u.ID, chi.URLParam(r, "id"), u.Role == account.RoleAdmin)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, v)
}
