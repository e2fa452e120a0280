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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/admin"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/stats"
)

// AdminOverview GET /v1/admin/overview
func (h *Handler) AdminOverview(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, h.d.Admin.Overview())
}

// AdminUsers GET /v1/admin/users?search=&status=
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := h.d.Admin.Users(q.Get("search"), q.Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"users": users})
}

// AdminUserStatus PUT /v1/admin/users/{id}/status {"status": "blocked"}
func (h *Handler) AdminUserStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.d.Admin.SetUserStatus(chi.URLParam(r, "id"), in.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, u)
}

// AdminGames GET /v1/admin/games
func (h *Handler) AdminGames(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, map[string]any{"games": h.d.Admin.Games(), "pools": h.d.Runtime.Metrics()})
}

// AdminGameStatus PUT /v1/admin/games/{gid}/status {"maintenance": true}
func (h *Handler) AdminGameStatus(w http.ResponseWriter, r *http.Request) {
	gid, err := pathGID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in struct {
		Maintenance bool `json:"maintenance"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.d.Admin.SetGameMaintenance(gid, in.Maintenance); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"gid": gid, "maintenance": in.Maintenance})
}

// AdminTransactions GET /v1/admin/transactions?type=&status=&user_id=&limit=
func (h *Handler) AdminTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	txs, err := h.d.Admin.Transactions(admin.TxQuery{UserID: q.Get("user_id"), Type: q.Get("type"), Status: q.Get("status"), Limit: limit})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"transactions": txs})
}

// AdminApprove POST /v1/admin/transactions/{id}/approve
func (h *Handler) AdminApprove(w http.ResponseWriter, r *http.Request) {
	tx, err := h.d.Admin.Approve(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, tx)
}

// AdminReject POST /v1/admin/transactions/{id}/reject {"reason": "..."}；body 可省略。
func (h *Handler) AdminReject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := dto.DecodeJSON(r, &in); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	tx, err := h.d.Admin.Reject(chi.URLParam(r, "id"), in.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, tx)
}

// AdminSettings GET /v1/admin/settings
func (h *Handler) AdminSettings(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, h.d.Admin.Settings())
}

// AdminUpdateSettings PUT /v1/admin/settings（整份替換）
func (h *Handler) AdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	next := h.d.Admin.Settings()
	if err := dto.DecodeJSON(r, &next); err != nil {
		h.fail(w, r, err)
		return
	}
	cur, err := h.d.Admin.UpdateSettings(next)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, cur)
}

// AdminBroadcast POST /v1/admin/broadcast {"title","message"}
func (h *Handler) AdminBroadcast(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.d.Admin.Broadcast(in.Title, in.Message)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]int{"delivered": n})
}

const (
	maxSimRounds  = 1_000_000
	maxSimWorkers = 8
)

// AdminSimulate POST /v1/admin/games/{gid}/simulate
//
// 在隔離的模擬器上跑 rounds*workers 局，回傳 RTP 統計；不影響線上彩金池與錢包。
func (h *Handler) AdminSimulate(w http.ResponseWriter, r *http.Request) {
	gid, err := pathGID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in struct {
		Bet     int64            `json:"bet,omitempty"`
		Bets    []games.BetInput `json:"bets,omitempty"`
		Rounds  int              `json:"rounds"`
		Workers int              `json:"workers,omitempty"`
		Seed    *int64           `json:"seed,omitempty"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if in.Rounds < 1 || in.Rounds > maxSimRounds {
		h.fail(w, r, errs.Warnf("rounds must be between 1 and %d", maxSimRounds))
		return
	}
	in.Workers = min(max(1, in.Workers), maxSimWorkers)

	rl := h.d.Runtime.Royale()
	if _, ok := rl.EntryById(gid); !ok {
		h.fail(w, r, errs.NewNotFound("game not found"))
		return
	}
	var sim *royale.Simulator
	if in.Seed != nil {
		sim, err = rl.NewSimulatorWithSeed(gid, *in.Seed)
	} else {
		sim, err = rl.NewSimulator(gid)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep, used, err := sim.SimMP(&games.Request{Bet: in.Bet, Bets: in.Bets}, in.Rounds, in.Workers, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, struct {
		Stats    *stats.StatReport `json:"stats"`
		UsedTime int64             `json:"used_ms"`
		Rounds   int               `json:"rounds"`
	}{rep, used.Milliseconds(), in.Rounds * in.Workers})
}
