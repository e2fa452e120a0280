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

package slots

import (
	"context"
	"sync"
	"time"

	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

const defaultGrowEvery = 5 * time.Second

// Grower 定期讓所有彩金池成長，並回報新值。實作 app.Component。
type Grower struct {
	shared *games.Shared
	core   *core.Core
	every  time.Duration
	onGrow func(gid rules.GID, value int64)

	mu   sync.Mutex // 保護 core
	stop chan struct{}
	once sync.Once
	done chan struct{}
}

// NewGrower every <= 0 時使用 5s；onGrow 可為 nil。
func NewGrower(shared *games.Shared, c *core.Core, every time.Duration, onGrow func(gid rules.GID, value int64)) *Grower {
	if every <= 0 {
		every = defaultGrowEvery
	}
	return &Grower{
		shared: shared,
		core:   c,
		every:  every,
		onGrow: onGrow,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Tick 讓每個到期的彩金池成長一次。last 記錄各池上次成長時間。
func (g *Grower) Tick(now time.Time, last map[rules.GID]time.Time) {
	Jackpots(g.shared, func(gid rules.GID, j *Jackpot) {
		if every := j.Every(); every > 0 && now.Sub(last[gid]) < every {
			return
		}
		last[gid] = now
		g.mu.Lock()
		v := j.Grow(g.core)
		g.mu.Unlock()
		if g.onGrow != nil {
			g.onGrow(gid, v)
		}
	})
}

func (g *Grower) Run() error {
	defer close(g.done)
	t := time.NewTicker(g.every)
	defer t.Stop()
	last := map[rules.GID]time.Time{}
	for {
		select {
		case <-g.stop:
			return nil
		case now := <-t.C:
			g.Tick(now, last)
		}
	}
}

func (g *Grower) Shutdown(ctx context.Context) error {
	g.once.Do(func() { close(g.stop) })
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
