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

package app

import (
	"context"
	"sync"
)

// Component 長生命週期元件：HTTP server、WebSocket hub、排程器、彩金成長等。
//   - Run 阻塞到元件停止為止。
//   - Shutdown 要求優雅關閉，需尊重 ctx 的期限。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// closer 沒有背景工作，只在關閉時釋放資源（機台池、Redis 連線）。
type closer struct {
	fn   func()
	once sync.Once
	stop chan struct{}
}

// OnShutdown 包成 Component：Run 等待關閉，Shutdown 時呼叫 fn 一次。
func OnShutdown(fn func()) Component {
	return &closer{fn: fn, stop: make(chan struct{})}
}

func (c *closer) Run() error {
	<-c.stop
	return nil
}

func (c *closer) Shutdown(context.Context) error {
	c.once.Do(func() {
		if c.fn != nil {
			c.fn()
		}
		close(c.stop)
	})
	return nil
}
