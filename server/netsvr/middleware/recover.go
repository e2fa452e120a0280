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
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/server/httperr"
)

// Recover 攔下 handler panic，記錄後回 500。http.ErrAbortHandler 照常往上拋。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered", "request_id", GetReqId(r), "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				if !isWebSocketUpgrade(r) {
					httperr.Errs(w, r, errs.NewFatal("internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
