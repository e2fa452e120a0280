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

package api

import (
	"log/slog"
	"net/http"
	"time"

	v1 "github.com/zintix-labs/royale/server/api/v1"
	"github.com/zintix-labs/royale/server/netsvr"
	"github.com/zintix-labs/royale/server/netsvr/middleware"
	"github.com/zintix-labs/royale/server/ratelimit"
	"github.com/zintix-labs/royale/server/svrcfg"
)

// Options 路由層需要的設定
type Options struct {
	Log         *slog.Logger
	Auth        middleware.Authenticator
	Limiter     ratelimit.Limiter
	RateLimit   svrcfg.RateLimits
	CORSOrigins []string
	Compress    bool
}

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, h *v1.Handler, opts Options) {
	registerMiddleware(svr, opts) // 1. 註冊 middleware
	svr.Get("/healthz", h.Health) // 2. 存活檢查
	registerV1API(svr, h, opts)   // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, opts Options) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(opts.Log))
	svr.Use(middleware.Recover(opts.Log))
	svr.Use(middleware.CORS(opts.CORSOrigins))
	svr.Use(middleware.Compress(middleware.CompressConfig{
		Disabled:  !opts.Compress,
		GzipLevel: middleware.DefaultCompressConfig.GzipLevel,
		ZstdLevel: middleware.DefaultCompressConfig.ZstdLevel,
	}))
}

// limit 以分鐘為窗；次數 <= 0 時不限制。
func limit(opts Options, name string, n int) func(http.Handler) http.Handler {
	return middleware.RateLimit(opts.Limiter, name, n, time.Minute, opts.Log)
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, h *v1.Handler, opts Options) {
	auth := middleware.Auth(opts.Auth)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Use(limit(opts, "api", opts.RateLimit.Other))

		// 公開
		vOne.Get("/lobby", h.Lobby)
		vOne.Get("/games", h.Games)
		vOne.Get("/games/roulette/{gid}/history", h.RouletteHistory)
		vOne.Get("/games/slots/{gid}/jackpot", h.SlotsJackpot)
		vOne.Get("/payments/methods", h.PaymentMethods)
		vOne.Get("/tournaments", h.Tournaments)
		vOne.Get("/tournaments/{id}/leaderboard", h.Leaderboard)

		authLimited := vOne.With(limit(opts, "auth", opts.RateLimit.Auth))
		authLimited.Post("/auth/register", h.Register)
		authLimited.Post("/auth/login", h.Login)

		// 需登入
		user := vOne.With(auth)
		user.Get("/me", h.Me)
		user.Get("/me/transactions", h.MyTransactions)
		user.Get("/rounds/{id}/verify", h.VerifyRound)
		user.Post("/payments/deposit", h.Deposit)
		user.Post("/payments/withdraw", h.Withdraw)
		user.Post("/tournaments/{id}/join", h.JoinTournament)
		user.Get("/notifications", h.Notifications)
		user.Post("/notifications/read-all", h.ReadAllNotifications)
		user.Post("/notifications/{id}/read", h.ReadNotification)
		user.Get("/support/messages", h.SupportConversation)
		user.Post("/support/messages", h.SupportSend)
		user.Get("/ws", h.WS)

		spin := vOne.With(auth, limit(opts, "spin", opts.RateLimit.Spin))
		spin.Post("/games/roulette/{gid}/spin", h.RouletteSpin)
		spin.Post("/games/slots/{gid}/spin", h.SlotsSpin)

		// 管理員
		vOne.Group("/admin", func(adm netsvr.NetRouter) {
			adm.Use(auth)
			adm.Use(middleware.Admin)
			adm.Get("/overview", h.AdminOverview)
			adm.Get("/users", h.AdminUsers)
			adm.Put("/users/{id}/status", h.AdminUserStatus)
			adm.Get("/games", h.AdminGames)
			adm.Put("/games/{gid}/status", h.AdminGameStatus)
			adm.Post("/games/{gid}/simulate", h.AdminSimulate)
			adm.Get("/transactions", h.AdminTransactions)
			adm.Post("/transactions/{id}/approve", h.AdminApprove)
			adm.Post("/transactions/{id}/reject", h.AdminReject)
			adm.Get("/settings", h.AdminSettings)
			adm.Put("/settings", h.AdminUpdateSettings)
			adm.Post("/broadcast", h.AdminBroadcast)
		})
	})
}
