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

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/server/httperr"
)

// Authenticator 由 account.Service 實作
type Authenticator interface {
	Authenticate(raw string) (account.User, error)
}

type userKey struct{}

var (
	errNoToken  = errs.NewUnauthorized("authorization required")
	errNotAdmin = errs.NewForbidden("admin only")
)

// Auth 驗證 Bearer token；WebSocket 無法帶 header，允許 ?token=。
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				httperr.Errs(w, r, errNoToken)
				return
			}
			u, err := a.Authenticate(raw)
			if err != nil {
				httperr.Errs(w, r, err)
				return
			}
			noteUser(r, u.ID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
		})
	}
}

// Admin 必須掛在 Auth 之後
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := User(r)
		if !ok {
			httperr.Errs(w, r, errNoToken)
			return
		}
		if u.Role != account.RoleAdmin {
			httperr.Errs(w, r, errNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// User 取得 Auth 放入的使用者
func User(r *http.Request) (account.User, bool) {
	u, ok := r.Context().Value(userKey{}).(account.User)
	return u, ok
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(tok)
	}
	return r.URL.Query().Get("token")
}
