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

// Package v1 是 /v1 的 HTTP handler：只做解碼、呼叫領域服務、編碼回應。
package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/admin"
	"github.com/zintix-labs/royale/dealer"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/hub"
	"github.com/zintix-labs/royale/lobby"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/payment"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/server/httperr"
	"github.com/zintix-labs/royale/server/netsvr/middleware"
	"github.com/zintix-labs/royale/support"
	"github.com/zintix-labs/royale/tournament"
	"github.com/zintix-labs/royale/wallet"
)

// SpinTimeout 單局的處理時限
const SpinTimeout = 5 * time.Second

// Deps 全部領域服務
type Deps struct {
	Log         *slog.Logger
	Runtime     *royale.Runtime
	Accounts    *account.Service
	Wallet      *wallet.Wallet
	Dealer      *dealer.Dealer
	Lobby       *lobby.Lobby
	Payments    *payment.Service
	Tournaments *tournament.Board
	Notes       *notify.Center
	Support     *support.Service
	Hub         *hub.Hub
	Admin       *admin.Panel
}

type Handler struct {
	log *slog.Logger
	d   Deps
}

func NewHandler(d Deps) (*Handler, error) {
	if d.Runtime == nil || d.Accounts == nil || d.Wallet == nil || d.Dealer == nil || d.Lobby == nil ||
		d.Payments == nil || d.Tournaments == nil || d.Notes == nil || d.Support == nil || d.Hub == nil || d.Admin == nil {
		return nil, errs.NewFatal("v1: nil dependency")
	}
	log := d.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{log: log.With("component", "api"), d: d}, nil
}

// writeJSON 先編碼到記憶體，避免寫到一半才出錯
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.fail(w, r, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func (h *Handler) ok(w http.ResponseWriter, r *http.Request, v any) {
	h.writeJSON(w, r, http.StatusOK, v)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, r.Method+" "+r.URL.Path, err)
	httperr.Errs(w, r, err)
}

// user 路由保證已掛 Auth
func user(r *http.Request) account.User {
	u, _ := middleware.User(r)
	return u
}

func pathGID(r *http.Request) (rules.GID, error) {
	s := chi.URLParam(r, "gid")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, errs.NewWarn("gid must be a positive integer")
	}
	return rules.GID(n), nil
}

// queryInt 缺少時回傳 def
func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Warnf("%s must be an integer", key)
	}
	return n, nil
}

// Health GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.d.Runtime.Closed() {
		status = "runtime closed: " + h.d.Runtime.ClosedReason()
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, r, code, map[string]any{"status": status, "online": h.d.Hub.Online()})
}

func errBadFilter(key, val string) error {
	return errs.Warnf("invalid %s %q", key, val)
}
