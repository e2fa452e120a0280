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

// Package payment 模擬出入金：只寫入帳本，不連接任何金流。
//
// 入金立即完成並入帳 amount - fee；出金立即扣款並保持 pending，
// 由管理員核准（completed）或退回（failed 並退款）。
package payment

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/money"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
)

// FirstDepositCap 首存贈金上限（100%）
const FirstDepositCap int64 = 100000

var (
	ErrMethod      = errs.NewWarn("unknown payment method")
	ErrDailyLimit  = errs.NewWarn("daily deposit limit exceeded")
	ErrNotWithdraw = errs.NewWarn("transaction is not a withdrawal")
)

// Request 出入金請求
type Request struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
	Card   *Card  `json:"card,omitempty"`
}

type Service struct {
	log    *slog.Logger
	wallet *wallet.Wallet
	sets   *settings.Store
	notes  *notify.Center
	now    func() time.Time
}

// New notes 可為 nil
func New(log *slog.Logger, w *wallet.Wallet, sets *settings.Store, notes *notify.Center) (*Service, error) {
	if w == nil || sets == nil {
		return nil, errs.NewFatal("payment: nil dependency")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		log:    log.With("component", "payment"),
		wallet: w,
		sets:   sets,
		notes:  notes,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) check(req Request) (Method, error) {
	m, ok := Lookup(req.Method)
	if !ok {
		return Method{}, ErrMethod.With(req.Method)
	}
	if err := m.inLimits(req.Amount); err != nil {
		return Method{}, err
	}
	if m.Card {
		if err := req.Card.Valid(s.now()); err != nil {
			return Method{}, err
		}
	}
	return m, nil
}

// Deposit 入金；首筆入金在 bonusesEnabled 時另外贈送等額 bonus（上限 FirstDepositCap）。
func (s *Service) Deposit(uid string, req Request) (*wallet.Transaction, error) {
	m, err := s.check(req)
	if err != nil {
		return nil, err
	}
	sets := s.sets.Get()
	since := s.now().Add(-24 * time.Hour)
	var first bool
	// 額度與首存判斷和入帳在同一把帳戶鎖內，併發入金不會超額或重複領首存贈金
	tx, err := s.wallet.CreditIf(uid, wallet.Entry{
		Type:   wallet.TxDeposit,
		Amount: req.Amount,
		Fee:    m.Fee(req.Amount),
		Method: m.ID,
		Ref:    req.Card.Masked(),
	}, func() error {
		used := s.wallet.Sum(wallet.Filter{UserID: uid, Type: wallet.TxDeposit, Since: since})
		if used+req.Amount > sets.MaxDailyDeposit {
			return ErrDailyLimit.With(money.Format(sets.MaxDailyDeposit-used) + " left today")
		}
		first = len(s.wallet.Transactions(wallet.Filter{UserID: uid, Type: wallet.TxDeposit, Limit: 1})) == 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("deposit completed", "uid", uid, "method", m.ID, "amount", req.Amount, "fee", tx.Fee)
	s.push(uid, notify.KindPayment, "Deposit completed", money.Format(tx.Amount-tx.Fee)+" credited via "+m.Name)

	if first && sets.BonusesEnabled {
		bonus := min(req.Amount, FirstDepositCap)
		if _, err := s.wallet.Credit(uid, wallet.Entry{Type: wallet.TxBonus, Amount: bonus, Method: "first_deposit", Ref: tx.ID}); err != nil {
			s.log.Warn("first deposit bonus failed", "uid", uid, "err", err)
		} else {
			s.push(uid, notify.KindBonus, "Welcome bonus credited", money.Format(bonus)+" added to your balance")
		}
	}
	return tx, nil
}

// Withdraw 出金：扣款 amount，狀態 pending。
func (s *Service) Withdraw(uid string, req Request) (*wallet.Transaction, error) {
	m, err := s.check(req)
	if err != nil {
		return nil, err
	}
	sets := s.sets.Get()
	if req.Amount < sets.MinWithdraw || req.Amount > sets.MaxWithdraw {
		return nil, errs.Warnf("withdraw amount must be between %d and %d", sets.MinWithdraw, sets.MaxWithdraw)
	}
	tx, err := s.wallet.Debit(uid, wallet.Entry{
		Type:   wallet.TxWithdraw,
		Amount: req.Amount,
		Fee:    m.Fee(req.Amount),
		Method: m.ID,
		Ref:    req.Card.Masked(),
		Status: wallet.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("withdraw requested", "uid", uid, "method", m.ID, "amount", req.Amount, "tx", tx.ID)
	s.push(uid, notify.KindPayment, "Withdrawal requested", money.Format(req.Amount)+" is awaiting approval")
	return tx, nil
}

func (s *Service) pendingWithdraw(txid string) (wallet.Transaction, error) {
	tx, err := s.wallet.Tx(txid)
	if err != nil {
		return tx, err
	}
	if tx.Type != wallet.TxWithdraw {
		return tx, ErrNotWithdraw
	}
	return tx, nil
}

// Approve 核准出金
func (s *Service) Approve(txid string) (*wallet.Transaction, error) {
	if _, err := s.pendingWithdraw(txid); err != nil {
		return nil, err
	}
	tx, err := s.wallet.Resolve(txid, wallet.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.log.Info("withdraw approved", "uid", tx.UserID, "tx", txid)
	s.push(tx.UserID, notify.KindPayment, "Withdrawal approved", money.Format(tx.Amount-tx.Fee)+" is on its way")
	return tx, nil
}

// Reject 退回出金並全額退款
func (s *Service) Reject(txid, reason string) (*wallet.Transaction, error) {
	if _, err := s.pendingWithdraw(txid); err != nil {
		return nil, err
	}
	tx, err := s.wallet.Resolve(txid, wallet.StatusFailed)
	if err != nil {
		return nil, err
	}
	if _, err := s.wallet.Credit(tx.UserID, wallet.Entry{Type: wallet.TxRefund, Amount: tx.Amount, Method: tx.Method, Ref: txid}); err != nil {
		// 已標記 failed 但退款失敗：必須人工處理
		s.log.Error("withdraw refund failed", "uid", tx.UserID, "tx", txid, "err", err)
		return nil, errs.Wrap(err, "refund rejected withdrawal")
	}
	s.log.Info("withdraw rejected", "uid", tx.UserID, "tx", txid, "reason", reason)
	msg := money.Format(tx.Amount) + " returned to your balance"
	if reason != "" {
		msg += ": " + reason
	}
	s.push(tx.UserID, notify.KindPayment, "Withdrawal rejected", msg)
	return tx, nil
}

func (s *Service) push(uid string, k notify.Kind, title, msg string) {
	if s.notes != nil {
		s.notes.Push(uid, k, title, msg)
	}
}
