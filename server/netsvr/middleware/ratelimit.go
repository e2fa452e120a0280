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
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/zintix-labs/royale/server/httperr"
	"github.com/zintix-labs/royale/server/ratelimit"
)

// RateLimit 已驗證請求以 uid 計數，否則以來源 IP。
// 限流器本身出錯時放行並記錄。
func RateLimit(l ratelimit.Limiter, name string, limit int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := name + ":" + clientKey(r)
			ok, err := l.Allow(r.Context(), key, limit, window)
			if err != nil {
				if log != nil {
					log.Warn("rate limiter unavailable", "key", key, "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(window/time.Second))))
				httperr.Errs(w, r, ratelimit.ErrLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if u, ok := User(r); ok {
		return "u:" + u.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
