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
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/games/roulette"
	"github.com/zintix-labs/royale/games/slots"
	"github.com/zintix-labs/royale/rules"
)

var (
	ErrMaintenance   = errs.NewForbidden("game under maintenance")
	ErrUnknownGame   = errs.NewNotFound("game id not found")
	ErrReplayRefused = errs.NewWarn("replay is not allowed on live runtime")
)

// Runtime 線上服務的開局入口：每款遊戲一個 MachinePool，依 GID 分派。
type Runtime struct {
	r *Royale

	pools map[rules.GID]*MachinePool
	ids   []rules.GID // 固定順序，來自 cat.IDs()

	// 維護中的遊戲拒絕開局
	maintMu sync.RWMutex
	maint   map[rules.GID]bool

	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int
}

func newRuntime(r *Royale, ids []rules.GID, poolSize int) *Runtime {
	rt := &Runtime{
		r:        r,
		pools:    make(map[rules.GID]*MachinePool, len(ids)),
		ids:      ids,
		maint:    map[rules.GID]bool{},
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")
	return rt
}

// Play 開一局。req.StartB64U 只允許在 Royale.Replay 使用。
func (rt *Runtime) Play(ctx context.Context, req *dto.PlayRequest) (*dto.PlayResult, error) {
	if req == nil {
		return nil, errs.NewWarn("nil play request")
	}
	if req.StartB64U != "" {
		return nil, ErrReplayRefused
	}
	mp, err := rt.pool(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	// pool 自己會處理 done / close / rebuild / metrics
	return mp.Play(ctx, req)
}

// Quote 驗證下注並回傳本局押注總額。
func (rt *Runtime) Quote(ctx context.Context, gid rules.GID, req *games.Request) (int64, error) {
	mp, err := rt.pool(ctx, gid)
	if err != nil {
		return 0, err
	}
	return mp.Quote(ctx, req)
}

func (rt *Runtime) pool(ctx context.Context, gid rules.GID) (*MachinePool, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-rt.done:
		rt.closed.Store(true)
		return nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}
	mp, ok := rt.pools[gid]
	if !ok {
		return nil, ErrUnknownGame
	}
	if rt.InMaintenance(gid) {
		return nil, ErrMaintenance
	}
	return mp, nil
}

// SetMaintenance 切換單一遊戲的維護狀態。
func (rt *Runtime) SetMaintenance(gid rules.GID, on bool) error {
	if _, ok := rt.pools[gid]; !ok {
		return ErrUnknownGame
	}
	rt.maintMu.Lock()
	defer rt.maintMu.Unlock()
	if on {
		rt.maint[gid] = true
	} else {
		delete(rt.maint, gid)
	}
	return nil
}

func (rt *Runtime) InMaintenance(gid rules.GID) bool {
	rt.maintMu.RLock()
	defer rt.maintMu.RUnlock()
	return rt.maint[gid]
}

func (rt *Runtime) IDs() []rules.GID {
	return append([]rules.GID(nil), rt.ids...)
}

func (rt *Runtime) Setting(gid rules.GID) (*rules.GameSetting, error) {
	return rt.r.Setting(gid)
}

func (rt *Runtime) Royale() *Royale { return rt.r }

// History 輪盤桌最近的開獎（新到舊）。
func (rt *Runtime) History(gid rules.GID) ([]rules.Pocket, error) {
	if _, ok := rt.pools[gid]; !ok {
		return nil, ErrUnknownGame
	}
	h, ok := roulette.LookupHistory(rt.r.shared, gid)
	if !ok {
		return nil, errs.NewNotFound("game has no history")
	}
	return h.Last(), nil
}

// Jackpot 老虎機的彩金池。
func (rt *Runtime) Jackpot(gid rules.GID) (*slots.Jackpot, error) {
	if _, ok := rt.pools[gid]; !ok {
		return nil, ErrUnknownGame
	}
	jp, ok := slots.LookupJackpot(rt.r.shared, gid)
	if !ok {
		return nil, errs.NewNotFound("game has no jackpot")
	}
	return jp, nil
}

// Metrics 依 GID 順序回傳每個機台池的觀測快照。
func (rt *Runtime) Metrics() []MachinePoolMetrics {
	out := make([]MachinePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

// Close 進入關閉狀態，可重複呼叫。
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, mp := range rt.pools {
			mp.shut(reason)
		}
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
