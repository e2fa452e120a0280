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

	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/wallet"
)

// Register POST /v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in account.RegisterInput
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.d.Accounts.Register(in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, s)
}

// Login POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.d.Accounts.Login(in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, s)
}

// Me GET /v1/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.d.Accounts.Profile(user(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, p)
}

// MyTransactions GET /v1/me/transactions?type=&status=&limit=
func (h *Handler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f := wallet.Filter{UserID: user(r).ID, Limit: limit}
	if t := r.URL.Query().Get("type"); t != "" {
		tt, ok := wallet.ParseTxType(t)
		if !ok {
			h.fail(w, r, errBadFilter("type", t))
			return
		}
		f.Type = tt
	}
	if s := r.URL.Query().Get("status"); s != "" {
		st, ok := wallet.ParseTxStatus(s)
		if !ok {
			h.fail(w, r, errBadFilter("status", s))
			return
		}
		f.Status = st
	}
	h.ok(w, r, map[string]any{"transactions": h.d.Wallet.Transactions(f)})
}
