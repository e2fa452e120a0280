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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/royale/errs"
)

// Body 錯誤回應
type Body struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel → 504/408
//   - errs.Warn         → 400
//   - errs.Unauthorized → 401
//   - errs.Forbidden    → 403
//   - errs.NotFound     → 404
//   - errs.Conflict     → 409
//   - errs.Limited      → 429
//   - errs.Fatal 與其他 → 500
//
// 對應放在 HTTP 邊界層，核心錯誤包不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	switch errs.Level(err) {
	case errs.Warn:
		return http.StatusBadRequest
	case errs.Unauthorized:
		return http.StatusUnauthorized
	case errs.Forbidden:
		return http.StatusForbidden
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	case errs.Limited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Errs 寫回 JSON 錯誤。500 不外露內部訊息。
func Errs(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	Write(w, r, status, msg)
}

// Write 直接以指定 status 寫回錯誤（路由層的 404/405 使用）。
func Write(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := Body{Error: msg}
	if r != nil {
		body.RequestID = chimid.GetReqID(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Log 依 status 決定等級：408/409/429 記 Warn，5xx 記 Error，其餘不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
