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

// Package admin 管理後台：總覽、使用者、遊戲、交易與系統設定。
package admin

import (
	"log/slog"

	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/payment"
	"github.com/zintix-labs/royale/recorder"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
)

// Presence 線上人數；hub.Hub 滿足此介面。
type Presence interface {
	Online() int
}

type Panel struct {
	log      *slog.Logger
	accounts *account.Service
	wallet   *wallet.Wallet
	payments *payment.Service
	rt       *royale.Runtime
	live     *recorder.LiveRecorder
	notes    *notify.Center
	sets     *settings.Store
	online   Presence
}

// Deps online 可為 nil
type Deps struct {
	Accounts *account.Service
	Wallet   *wallet.Wallet
	Payments *payment.Service
	Runtime  *royale.Runtime
	Live     *recorder.LiveRecorder
	Notes    *notify.Center
	Sets     *settings.Store
	Online   Presence
}

func New(log *slog.Logger, d Deps) (*Panel, error) {
	if d.Accounts == nil || d.Wallet == nil || d.Payments == nil || d.Runtime == nil ||
		d.Live == nil || d.Notes == nil || d.Sets == nil {
		return nil, errs.NewFatal("admin: nil dependency")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Panel{
		log:      log.With("component", "admin"),
		accounts: d.Accounts,
		wallet:   d.Wallet,
		payments: d.Payments,
		rt:       d.Runtime,
		live:     d.Live,
		notes:    d.Notes,
		sets:     d.Sets,
		online:   d.Online,
	}, nil
}

// Overview 後台首頁總計
type Overview struct {
	Users            int   `json:"total_users"`
	Online           int   `json:"online_users"`
	Deposits         int64 `json:"total_deposits"`
	Withdraws        int64 `json:"total_withdraws"`
	PendingWithdraws int   `json:"pending_withdraws"`
	Revenue          int64 `json:"revenue"`
	ActiveGames      int   `json:"active_games"`
	Maintenance      bool  `json:"maintenance_mode"`
}

func (p *Panel) Overview() Overview {
	o := Overview{
		Users:            p.accounts.Count(),
		Deposits:         p.wallet.Sum(wallet.Filter{Type: wallet.TxDeposit, Status: wallet.StatusCompleted}),
		Withdraws:        p.wallet.Sum(wallet.Filter{Type: wallet.TxWithdraw, Status: wallet.StatusCompleted}),
		PendingWithdraws: len(p.wallet.Transactions(wallet.Filter{Type: wallet.TxWithdraw, Status: wallet.StatusPending})),
		Revenue:          p.live.Revenue(),
		Maintenance:      p.sets.Get().MaintenanceMode,
	}
	if p.online != nil {
		o.Online = p.online.Online()
	}
	for _, id := range p.rt.IDs() {
		if !p.rt.InMaintenance(id) {
			o.ActiveGames++
		}
	}
	return o
}

// Users status 為空時不篩選
func (p *Panel) Users(search, status string) ([]account.View, error) {
	q := account.Query{Search: search}
	if status != "" {
		st, ok := account.ParseStatus(status)
		if !ok {
			return nil, errs.Warnf("invalid status %q", status)
		}
		q.Status = st
	}
	return p.accounts.List(q), nil
}

func (p *Panel) SetUserStatus(uid, status string) (account.User, error) {
	st, ok := account.ParseStatus(status)
	if !ok {
		return account.User{}, errs.Warnf("invalid status %q", status)
	}
	return p.accounts.SetStatus(uid, st)
}

// GameStat 線上統計加上維護狀態
type GameStat struct {
	recorder.LiveSnapshot
	Logic       rules.LogicKey `json:"logic"`
	Maintenance bool           `json:"maintenance"`
}

func (p *Panel) Games() []GameStat {
	ids := p.rt.IDs()
	out := make([]GameStat, 0, len(ids))
	for _, id := range ids {
		gs, err := p.rt.Setting(id)
		if err != nil {
			continue
		}
		snap, ok := p.live.Snapshot(id)
		if !ok {
			snap = recorder.LiveSnapshot{GID: id, Name: gs.GameName}
		}
		out = append(out, GameStat{LiveSnapshot: snap, Logic: gs.LogicKey, Maintenance: p.rt.InMaintenance(id)})
	}
	return out
}

// SetGameMaintenance 維護中的遊戲拒絕開局
func (p *Panel) SetGameMaintenance(gid rules.GID, on bool) error {
	if err := p.rt.SetMaintenance(gid, on); err != nil {
		return err
	}
	p.log.Info("game maintenance changed", "gid", gid, "maintenance", on)
	return nil
}

// TxQuery 交易清單條件；空字串不篩選
type TxQuery struct {
	UserID string
	Type   string
	Status string
	Limit  int
}

func (p *Panel) Transactions(q TxQuery) ([]wallet.Transaction, error) {
	f := wallet.Filter{UserID: q.UserID, Limit: q.Limit}
	if q.Type != "" {
		t, ok := wallet.ParseTxType(q.Type)
		if !ok {
			return nil, errs.Warnf("invalid transaction type %q", q.Type)
		}
		f.Type = t
	}
	if q.Status != "" {
		s, ok := wallet.ParseTxStatus(q.Status)
		if !ok {
			return nil, errs.Warnf("invalid transaction status %q", q.Status)
		}
		f.Status = s
	}
	return p.wallet.Transactions(f), nil
}

func (p *Panel) Approve(txid string) (*wallet.Transaction, error) {
	return p.payments.Approve(txid)
}

func (p *Panel) Reject(txid, reason string) (*wallet.Transaction, error) {
	return p.payments.Reject(txid, reason)
}

func (p *Panel) Settings() settings.System {
	return p.sets.Get()
}

func (p *Panel) UpdateSettings(next settings.System) (settings.System, error) {
	prev := p.sets.Get()
	cur, err := p.sets.Update(next)
	if err != nil {
		return cur, err
	}
	p.log.Info("settings updated", "maintenance", cur.MaintenanceMode, "registration", cur.RegistrationEnabled,
		"bonuses", cur.BonusesEnabled, "vip", cur.VIPProgramEnabled)
	if cur.MaintenanceMode && !prev.MaintenanceMode {
		p.broadcast("Maintenance", "The casino is under maintenance. Games are temporarily unavailable.")
	}
	return cur, nil
}

// Broadcast 系統通知給所有玩家，回傳送達人數。
func (p *Panel) Broadcast(title, msg string) (int, error) {
	if title == "" || msg == "" {
		return 0, errs.NewWarn("title and message required")
	}
	n := p.broadcast(title, msg)
	p.log.Info("system broadcast", "title", title, "users", n)
	return n, nil
}

func (p *Panel) broadcast(title, msg string) int {
	for _, id := range p.accounts.IDs() {
		p.notes.Track(id)
	}
	return p.notes.Broadcast(title, msg)
}
