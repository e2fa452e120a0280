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

// Package errs 定義 Royale 全域共用的錯誤型別與分級。
//
// 分級只描述「問題屬於哪一方」，不綁定任何傳輸層：
//   - Fatal：系統/不可恢復（機台狀態不可信、設定錯誤）
//   - Warn：請求/參數問題（呼叫端可修正）
//   - NotFound / Unauthorized / Forbidden / Conflict：資源與權限語意
//   - Limited：呼叫頻率超過限制
//   - Log：只需記錄的訊息
//
// HTTP 狀態碼映射放在 server/httperr，核心錯誤包不依賴 net/http。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
	NotFound
	Unauthorized
	Forbidden
	Conflict
	Limited
)

var errLvMap = map[ErrLevel]string{
	None:         "",
	Fatal:        "fatal",
	Warn:         "warn",
	Log:          "log",
	NotFound:     "not_found",
	Unauthorized: "unauthorized",
	Forbidden:    "forbidden",
	Conflict:     "conflict",
	Limited:      "limited",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；Cause 可串接下層錯誤（wrap）。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓預先宣告的哨兵錯誤（例如 wallet.ErrInsufficient）在被 Wrap 之後仍可用 errors.Is 命中。
// 兩個 *E 只要分級與主訊息相同即視為同一種錯誤。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e.ErrLv == t.ErrLv && e.Message == t.Message
}

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func NewNotFound(msg string) *E {
	return &E{Message: msg, ErrLv: NotFound}
}

func NewUnauthorized(msg string) *E {
	return &E{Message: msg, ErrLv: Unauthorized}
}

func NewForbidden(msg string) *E {
	return &E{Message: msg, ErrLv: Forbidden}
}

func NewConflict(msg string) *E {
	return &E{Message: msg, ErrLv: Conflict}
}

func NewLimited(msg string) *E {
	return &E{Message: msg, ErrLv: Limited}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// With 回傳帶有 extra 的複本，哨兵錯誤本身不被修改。
func (e *E) With(extra string) *E {
	c := *e
	c.Extra = extra
	return &c
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv（保持原本嚴重度）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	if errors.As(cause, &e) {
		errLv = e.ErrLv
	}
	r := New(errLv, msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，並附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// Level 回傳 err 鏈上第一個 *E 的分級；非 *E 錯誤視為 Fatal，nil 回傳 None。
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.ErrLv
	}
	return Fatal
}
