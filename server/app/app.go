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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout 優雅關閉的總時限
const DefaultShutdownTimeout = 5 * time.Second

// App 啟動所有 Component，收到 OS 信號、ctx 結束或任一 Component 返回時協調關閉。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
}

// New 建立一個新的 App 實例。
func New() *App {
	return &App{log: slog.New(slog.DiscardHandler), timeout: DefaultShutdownTimeout}
}

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

func (a *App) SetLogger(log *slog.Logger) {
	if log != nil {
		a.log = log
	}
}

func (a *App) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		a.timeout = d
	}
}

// Run 阻塞直到 SIGINT/SIGTERM 或任一 Component 的 Run 返回。
// 信號觸發時回傳 nil；Component 先返回時回傳其錯誤。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但由 ctx 取代 OS 信號。
func (a *App) RunContext(ctx context.Context) error {
	first := make(chan error, 1)
	var g errgroup.Group
	for _, c := range a.comps {
		g.Go(func() error {
			err := c.Run()
			select {
			case first <- err:
			default:
			}
			return err
		})
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown requested")
	case runErr = <-first:
		if runErr != nil {
			a.log.Error("component stopped", "err", runErr)
		} else {
			a.log.Info("component finished")
		}
	}
	a.gracefulShutdown(a.timeout)
	_ = g.Wait()
	return runErr
}

// gracefulShutdown 在 timeout 內依註冊順序呼叫 Component.Shutdown。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("shutdown error", "err", err)
		}
	}
}
