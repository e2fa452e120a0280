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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/admin"
	"github.com/zintix-labs/royale/dealer"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games/slots"
	"github.com/zintix-labs/royale/hub"
	"github.com/zintix-labs/royale/lobby"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/payment"
	"github.com/zintix-labs/royale/recorder"
	"github.com/zintix-labs/royale/rounds"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
	"github.com/zintix-labs/royale/server/api"
	v1 "github.com/zintix-labs/royale/server/api/v1"
	"github.com/zintix-labs/royale/server/app"
	"github.com/zintix-labs/royale/server/netsvr"
	"github.com/zintix-labs/royale/server/ratelimit"
	"github.com/zintix-labs/royale/server/svrcfg"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/support"
	"github.com/zintix-labs/royale/tournament"
	"github.com/zintix-labs/royale/wallet"
)

// Server 組裝完成、尚未啟動的服務。
type Server struct {
	cfg *svrcfg.SvrCfg
	svr netsvr.NetSvr
	app *app.App

	Accounts *account.Service
	Wallet   *wallet.Wallet
	Hub      *hub.Hub
}

// Run 是 server 套件的組裝器與啟動入口：驗證設定、組裝所有服務、阻塞直到收到信號。
func Run(sCfg *svrcfg.SvrCfg) {
	s, err := Build(sCfg)
	if err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	sCfg.Log.Info("[royale] listening on " + sCfg.Addr)
	if err := s.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}

// Build 使用內建的 ChiAdapter 組裝。
func Build(sCfg *svrcfg.SvrCfg) (*Server, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("svrcfg is required")
	}
	return BuildWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr, netsvr.Timeouts{}))
}

// BuildWithSvr 與 Build 相同，但由呼叫端注入 NetSvr（例如自訂 listener 或既有框架的 adapter）。
func BuildWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) (*Server, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("svrcfg is required")
	}
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	if svr == nil {
		return nil, errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return nil, errs.NewFatal("default server is not ready")
	}
	log := sCfg.Log
	s := &Server{cfg: sCfg, svr: svr}

	rt, err := sCfg.Royale.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		return nil, err
	}

	sets := settings.NewStore(sCfg.Settings)
	w := wallet.New(log, sets)
	rl := rounds.NewLog(0)
	live := recorder.NewLiveRecorder()

	h := hub.New(log, checkOrigin(sCfg.CORSOrigins))
	notes := notify.New(h)

	tokens, err := account.NewTokens([]byte(sCfg.JWTSecret), sCfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	accounts, err := account.NewService(log, account.Options{
		StartBalance: sCfg.StartBalance,
		AdminEmails:  sCfg.AdminEmails,
	}, tokens, w, rl, sets)
	if err != nil {
		return nil, err
	}
	payments, err := payment.New(log, w, sets, notes)
	if err != nil {
		return nil, err
	}

	board := tournament.New(log, w, notes)
	if sCfg.SeedTournaments {
		for _, t := range tournament.Seed(time.Now()) {
			if _, err := board.Add(t); err != nil {
				return nil, err
			}
		}
	}

	deal, err := dealer.New(log, dealer.Deps{
		Runtime: rt,
		Wallet:  w,
		Rounds:  rl,
		Live:    live,
		Board:   board,
		Sets:    sets,
		Pub:     h,
	})
	if err != nil {
		return nil, err
	}
	lob, err := lobby.New(rt, board)
	if err != nil {
		return nil, err
	}
	seed := time.Now().UnixNano()
	sup, err := support.New(log, h, core.New(core.Default().New(seed)), sCfg.ReplyDelay, sCfg.SupportOnline)
	if err != nil {
		return nil, err
	}
	panel, err := admin.New(log, admin.Deps{
		Accounts: accounts,
		Wallet:   w,
		Payments: payments,
		Runtime:  rt,
		Live:     live,
		Notes:    notes,
		Sets:     sets,
		Online:   h,
	})
	if err != nil {
		return nil, err
	}

	// 事件串接
	w.OnChange(func(uid string, balance int64) {
		h.Send(uid, hub.TypeBalanceUpdate, map[string]int64{"balance": balance})
	})
	h.OnConnect(func(uid string) {
		if b, err := w.Balance(uid); err == nil {
			h.Send(uid, hub.TypeBalanceUpdate, map[string]int64{"balance": b})
		}
	})
	accounts.OnRegister(func(u account.User) {
		notes.Track(u.ID)
		notes.Welcome(u.ID, u.Name, sets.Get().BonusesEnabled)
	})
	grower := slots.NewGrower(rt.Royale().Shared(), core.New(core.Default().New(seed+1)), 0, func(gid rules.GID, value int64) {
		h.Broadcast(hub.TypeJackpotUpdate, dealer.JackpotUpdate{GID: gid, Value: value})
	})

	limiter, err := newLimiter(sCfg, log)
	if err != nil {
		return nil, err
	}

	handler, err := v1.NewHandler(v1.Deps{
		Log:         log,
		Runtime:     rt,
		Accounts:    accounts,
		Wallet:      w,
		Dealer:      deal,
		Lobby:       lob,
		Payments:    payments,
		Tournaments: board,
		Notes:       notes,
		Support:     sup,
		Hub:         h,
		Admin:       panel,
	})
	if err != nil {
		return nil, err
	}
	api.RegisterRoutes(svr, handler, api.Options{
		Log:         log,
		Auth:        accounts,
		Limiter:     limiter,
		RateLimit:   sCfg.RateLimit,
		CORSOrigins: sCfg.CORSOrigins,
		Compress:    sCfg.Compress,
	})

	// 關閉順序：先停收請求，再停推播與背景工作，最後釋放機台池與 Redis
	a := app.NewWith(svr, h, sup, tournament.NewScheduler(board, sCfg.TournamentTick), grower, app.OnShutdown(rt.Close))
	if c, ok := limiter.(interface{ Close() error }); ok {
		a.Register(app.OnShutdown(func() { _ = c.Close() }))
	}
	a.SetLogger(log)
	s.app = a
	s.Accounts, s.Wallet, s.Hub = accounts, w, h
	return s, nil
}

// redisLimiter 讓 Redis 連線隨服務關閉
type redisLimiter struct {
	*ratelimit.Redis
	close func() error
}

func (r redisLimiter) Close() error { return r.close() }

// newLimiter 有設定 Redis 位址時跨實例共用計數，否則使用單機限流。
func newLimiter(sCfg *svrcfg.SvrCfg, log *slog.Logger) (ratelimit.Limiter, error) {
	if sCfg.Redis.Addr == "" {
		return ratelimit.NewMemory(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := ratelimit.Dial(ctx, sCfg.Redis.Addr, sCfg.Redis.Password, sCfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	log.Info("rate limiter uses redis", "addr", sCfg.Redis.Addr)
	return redisLimiter{Redis: ratelimit.NewRedis(client, ""), close: client.Close}, nil
}

// checkOrigin 與 CORS 使用相同白名單；未設定時不檢查。
func checkOrigin(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, o)
	}
}

// Handler 內建 ChiAdapter 時回傳完整路由，供測試直接使用。
func (s *Server) Handler() http.Handler {
	if hs, ok := s.svr.(interface{ Handler() http.Handler }); ok {
		return hs.Handler()
	}
	return nil
}

// Run 阻塞直到 SIGINT/SIGTERM 或任一 Component 返回。
func (s *Server) Run() error {
	return s.app.Run()
}

// RunContext 由 ctx 取代 OS 信號。
func (s *Server) RunContext(ctx context.Context) error {
	return s.app.RunContext(ctx)
}
