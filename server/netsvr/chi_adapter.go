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

package netsvr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/royale/server/httperr"
)

const defaultAddr string = ":5808"

// Timeouts http.Server 逾時設定；零值使用預設。
// WebSocket 連線在升級後不受 Read/Write 限制。
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	def := func(d *time.Duration, v time.Duration) {
		if *d <= 0 {
			*d = v
		}
	}
	def(&t.ReadHeader, 5*time.Second)
	def(&t.Read, 10*time.Second)
	def(&t.Write, 15*time.Second)
	def(&t.Idle, 120*time.Second)
	return t
}

// ChiAdapter 以 chi 實作 NetSvr；子路由共用同一個 ChiAdapter 型別但沒有 server。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
}

// NewChiServer addr 為空時監聽 :5808
func NewChiServer(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = defaultAddr
	}
	to = to.withDefaults()
	cr := chi.NewRouter()
	// 未註冊的路徑與方法也回 JSON 錯誤
	cr.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperr.Write(w, r, http.StatusNotFound, "route not found")
	})
	cr.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperr.Write(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadHeaderTimeout: to.ReadHeader,
			ReadTimeout:       to.Read,
			WriteTimeout:      to.Write,
			IdleTimeout:       to.Idle,
		},
	}
}

func NewChiServerDefault() *ChiAdapter {
	return NewChiServer(defaultAddr, Timeouts{})
}

// Ready 只有最外層（帶 server）的 ChiAdapter 可以啟動
func (c *ChiAdapter) Ready() bool {
	if c == nil || c.router == nil || c.server == nil || c.server.Handler != c.router {
		return false
	}
	_, _, err := net.SplitHostPort(c.server.Addr)
	return err == nil
}

func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) { c.router.Use(mw) }
func (c *ChiAdapter) Get(path string, h http.HandlerFunc)     { c.router.Get(path, h) }
func (c *ChiAdapter) Post(path string, h http.HandlerFunc)    { c.router.Post(path, h) }
func (c *ChiAdapter) Put(path string, h http.HandlerFunc)     { c.router.Put(path, h) }
func (c *ChiAdapter) Delete(path string, h http.HandlerFunc)  { c.router.Delete(path, h) }

// With 回傳套用額外 middleware 的同層路由
func (c *ChiAdapter) With(mws ...func(http.Handler) http.Handler) NetRouter {
	return &ChiAdapter{router: c.router.With(mws...)}
}

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

func (c *ChiAdapter) Address() string {
	if c.server == nil {
		return ""
	}
	return c.server.Addr
}

// Handler 供 httptest 直接使用
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}
