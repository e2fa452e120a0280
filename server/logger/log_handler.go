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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

// ParseMode dev|prod|silence（不分大小寫，也接受 ModeDev 這類寫法）；無法辨識時為 ModeDev。
func ParseMode(s string) LogMode {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode") {
	case "prod", "production":
		return ModeProd
	case "silence", "silent", "off":
		return ModeSilence
	default:
		return ModeDev
	}
}

// 這些 key 的值一律以 Redacted 輸出
var secretKeys = map[string]bool{
	"password":         true,
	"confirm_password": true,
	"token":            true,
	"authorization":    true,
	"card":             true,
	"card_number":      true,
	"cvv":              true,
	"jwt_secret":       true,
}

const Redacted = "[REDACTED]"

// Redact 是 HandlerOptions.ReplaceAttr，遮蔽密碼、token 與卡號。
func Redact(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// NewDefaultLogger 同步寫出的 logger
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewLogger h 為 nil 時使用 ModeDev。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// NewAsync 依 LogMode 建立非阻塞 logger；服務結束前呼叫 AsyncHandler.Close 把殘留的 log 寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

// AsyncHandler 把 Handle 變成 enqueue，由背景 goroutine 寫出。
// 佇列滿時直接丟棄，下注請求不會因為 log I/O 變慢。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan entry
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx  context.Context
	rec  slog.Record
	next slog.Handler
}

func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{ch: make(chan entry, buf), closed: make(chan struct{})}
	q.wg.Add(1)
	go q.drain()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) drain() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			_ = e.next.Handle(e.ctx, e.rec)
		case <-q.closed:
			for {
				select {
				case e := <-q.ch:
					_ = e.next.Handle(e.ctx, e.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並寫完佇列中的 log，可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.closed) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.closed:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 跨 goroutine 前必須 Clone
	select {
	case h.q.ch <- entry{ctx: ctx, rec: r.Clone(), next: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		// JSON 寫 stdout，交給 log collector
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			ReplaceAttr: Redact,
		}).WithAttrs([]slog.Attr{slog.String("service", "royale")})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4})
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:       slog.LevelDebug,
			ReplaceAttr: Redact,
		})
	}
}
