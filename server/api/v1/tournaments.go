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
)

// Tournaments GET /v1/tournaments
func (h *Handler) Tournaments(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, map[string]any{"tournaments": h.d.Tournaments.List(h.optionalUser(r))})
}

// JoinTournament POST /v1/tournaments/{id}/join
func (h *Handler) JoinTournament(w http.ResponseWriter, r *http.Request) {
	u := user(r)
	v, err := h.d.Tournaments.Join(u.ID, u.Name, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, v)
}

// Leaderboard GET /v1/tournaments/{id}/leaderboard?limit=
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	board, err := h.d.Tournaments.Leaderboard(id, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]any{"tournament_id": id, "leaderboard": board})
}
