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

package royale

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

// brokenCap 壞機台 backlog 上限；滿了代表連續故障，整個池進入關閉。
const brokenCap = 100

// MachinePool 一款遊戲（一張桌或一台老虎機）的所有機台。
//
// 機台借出後只由一個 goroutine 使用；同一桌的彩金池與開獎歷史放在 Shared，由各機台共用。
// 機台 panic 或回傳 Fatal 錯誤時會被淘汰並補上新機，Warn 類的下注錯誤不影響機台。
type MachinePool struct {
	gs     *rules.GameSetting
	build  func() (*Machine, error)
	size   int
	pool   chan *Machine
	broken chan *Machine
	done   chan struct{}
	once   sync.Once

	inflight atomic.Int32
	rebuild  atomic.Int32
	panics   atomic.Int32
	fatals   atomic.Int32
	closed   atomic.Pointer[closeSnap]
}

// closeSnap 關閉當下的狀態，供事後排查
type closeSnap struct {
	reason    string
	inflight  int
	available int
	broken    int
}

func newMachinePool(n int, gs *rules.GameSetting, reg *games.LogicRegistry, cf core.PRNGFactory, shared *games.Shared, seed int64) (*MachinePool, error) {
	n = max(1, n)
	seeds := newSeedMaker(seed)
	p := &MachinePool{
		gs:     gs,
		size:   n,
		pool:   make(chan *Machine, n),
		broken: make(chan *Machine, brokenCap),
		done:   make(chan struct{}),
		build: func() (*Machine, error) {
			return newMachineWithSeed(gs, reg, cf, shared, seeds.next())
		},
	}
	for range n {
		m, err := p.build()
		if err != nil {
			return nil, err
		}
		p.pool <- m
	}
	return p, nil
}

// Close 之後 Play/Quote 直接回 Fatal，借出中的機台歸還時丟棄。
func (p *MachinePool) Close() { p.shut("closed") }

func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *MachinePool) shut(reason string) {
	p.once.Do(func() {
		p.closed.Store(&closeSnap{
			reason:    reason,
			inflight:  int(p.inflight.Load()),
			available: len(p.pool),
			broken:    len(p.broken),
		})
		close(p.done)
	})
}

// retires 錯誤代表機台狀態不可信；ctx 取消與下注錯誤不算。
func retires(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errs.Level(err) == errs.Fatal
}

// Play 借一台機台開一局
func (p *MachinePool) Play(ctx context.Context, req *dto.PlayRequest) (*dto.PlayResult, error) {
	var res *dto.PlayResult
	err := p.use(ctx, func(m *Machine) (e error) {
		res, e = m.Play(req)
		return e
	})
	return res, err
}

// Quote 借一台機台計算總押注（扣款前使用）
func (p *MachinePool) Quote(ctx context.Context, req *games.Request) (int64, error) {
	var stake int64
	err := p.use(ctx, func(m *Machine) (e error) {
		stake, e = m.Quote(req)
		return e
	})
	return stake, err
}

func (p *MachinePool) use(ctx context.Context, fn func(m *Machine) error) (err error) {
	var m *Machine
	select {
	case <-p.done:
		return errs.NewFatal("machine pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return ctx.Err()
	case m = <-p.pool:
	}
	if m == nil {
		return errs.NewFatal("machine pool got nil machine")
	}
	p.inflight.Add(1)

	defer func() {
		p.inflight.Add(-1)
		panicked := false
		if r := recover(); r != nil {
			panicked = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("machine %s panic: %v", p.gs.GameName, r))
		} else if retires(err) {
			p.fatals.Add(1)
		}
		if p.Closed() {
			return
		}
		if panicked || retires(err) {
			if e := p.replace(m); e != nil && err == nil {
				err = e
			}
			return
		}
		p.put(m)
	}()
	return fn(m)
}

// replace 壞機台送修並補一台新機
func (p *MachinePool) replace(bad *Machine) error {
	select {
	case p.broken <- bad:
	default:
		p.shut("overwhelmed_by_failures")
		return errs.NewFatal("machine pool overwhelmed by failures")
	}
	p.rebuild.Add(1)
	fresh, err := p.build()
	if err != nil {
		p.shut("rebuild_failed")
		return errs.NewFatal(fmt.Sprintf("machine %s can not build", p.gs.GameName))
	}
	p.put(fresh)
	return nil
}

func (p *MachinePool) put(m *Machine) {
	select {
	case <-p.done:
	case p.pool <- m:
	}
}

func (p *MachinePool) PoolSize() int  { return p.size }
func (p *MachinePool) Inflight() int  { return int(p.inflight.Load()) }
func (p *MachinePool) Available() int { return len(p.pool) }

func (p *MachinePool) ClosedReason() string {
	if s := p.closed.Load(); s != nil {
		return s.reason
	}
	return ""
}

// MachinePoolMetrics 後台 /admin/games 顯示的機台池狀態。
// Close* 欄位在尚未關閉時為 -1。
type MachinePoolMetrics struct {
	GameName      string    `json:"game_name"`
	GameID        rules.GID `json:"game_id"`
	Logic         string    `json:"logic"`
	PoolSize      int       `json:"pool_size"`
	Available     int       `json:"available"`
	Inflight      int       `json:"inflight"`
	BrokenBacklog int       `json:"broken_backlog"`
	Rebuild       int       `json:"rebuild"`
	Panics        int       `json:"panics"`
	Fatals        int       `json:"fatals"`
	Closed        bool      `json:"closed"`
	CloseReason   string    `json:"close_reason"`
	CloseInflight int       `json:"close_inflight"`
	CloseAvail    int       `json:"close_avail"`
	CloseBroken   int       `json:"close_broken"`
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	m := MachinePoolMetrics{
		GameName:      p.gs.GameName,
		GameID:        p.gs.GameID,
		Logic:         string(p.gs.LogicKey),
		PoolSize:      p.size,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		CloseInflight: -1,
		CloseAvail:    -1,
		CloseBroken:   -1,
	}
	if s := p.closed.Load(); s != nil {
		m.Closed = true
		m.CloseReason = s.reason
		m.CloseInflight, m.CloseAvail, m.CloseBroken = s.inflight, s.available, s.broken
	}
	return m
}
