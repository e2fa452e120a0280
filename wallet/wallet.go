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

// Package wallet 管理玩家餘額與帳本。
//
// 每一次餘額變動都會寫入一筆 Transaction，且 BalanceAfter = BalanceBefore ± Amount。
// 同一玩家同時只能有一局押注在進行中。
package wallet

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/settings"
)

var (
	ErrNoAccount      = errs.NewNotFound("wallet account not found")
	ErrExists         = errs.NewConflict("wallet account already exists")
	ErrBlocked        = errs.NewForbidden("account is blocked")
	ErrAmount         = errs.NewWarn("amount must > 0")
	ErrInsufficient   = errs.NewWarn("insufficient balance")
	ErrSpinInProgress = errs.NewConflict("a spin is already in progress")
	ErrSettled        = errs.NewConflict("ticket already settled")
	ErrNoTx           = errs.NewNotFound("transaction not found")
	ErrTxState        = errs.NewConflict("transaction is not pending")
)

// PointsPer 每押注 100 得 1 點 VIP 積分
const PointsPer = 100

// Account 玩家錢包的快照
type Account struct {
	UID            string    `json:"user_id"`
	Email          string    `json:"email"`
	Balance        int64     `json:"balance"`
	Blocked        bool      `json:"blocked"`
	TotalDeposits  int64     `json:"total_deposits"`
	TotalWithdraws int64     `json:"total_withdraws"`
	TotalWins      int64     `json:"total_wins"`
	TotalLosses    int64     `json:"total_losses"`
	Wagered        int64     `json:"wagered"`
	GamesPlayed    int       `json:"games_played"`
	VIPPoints      int64     `json:"vip_points"`
	LastActivity   time.Time `json:"last_activity"`
}

type account struct {
	mu         sync.Mutex
	data       Account
	inProgress bool
}

// Ticket 一筆已扣款、尚未結算的押注
type Ticket struct {
	ID      string `json:"id"`
	UID     string `json:"user_id"`
	Amount  int64  `json:"amount"`
	Ref     string `json:"ref"`
	TxID    string `json:"tx_id"`
	settled atomic.Bool
}

// Wallet 可併發使用；每個玩家有自己的鎖。
type Wallet struct {
	log  *slog.Logger
	sets *settings.Store

	mu       sync.RWMutex
	accounts map[string]*account

	lmu    sync.RWMutex
	ledger []*Transaction
	byID   map[string]*Transaction

	omu      sync.RWMutex
	onChange func(uid string, balance int64)

	now func() time.Time
}

// New sets 可為 nil（VIP 積分預設開啟）。
func New(log *slog.Logger, sets *settings.Store) *Wallet {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Wallet{
		log:      log.With("component", "wallet"),
		sets:     sets,
		accounts: map[string]*account{},
		byID:     map[string]*Transaction{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OnChange 註冊餘額變動通知（例如推送 BALANCE_UPDATE）。
func (w *Wallet) OnChange(fn func(uid string, balance int64)) {
	w.omu.Lock()
	w.onChange = fn
	w.omu.Unlock()
}

// Open 建立錢包；bonus > 0 時記一筆 bonus 交易作為起始餘額。
func (w *Wallet) Open(uid, email string, bonus int64) error {
	w.mu.Lock()
	if _, ok := w.accounts[uid]; ok {
		w.mu.Unlock()
		return ErrExists
	}
	a := &account{data: Account{UID: uid, Email: email, LastActivity: w.now()}}
	w.accounts[uid] = a
	w.mu.Unlock()
	if bonus > 0 {
		_, err := w.Credit(uid, Entry{Type: TxBonus, Amount: bonus, Method: "welcome"})
		return err
	}
	return nil
}

// SetBlocked 被封鎖的帳號不能押注或出入金。
func (w *Wallet) SetBlocked(uid string, blocked bool) error {
	a, err := w.get(uid)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.data.Blocked = blocked
	a.mu.Unlock()
	return nil
}

// Stake 扣除押注並標記進行中。
func (w *Wallet) Stake(uid string, amount int64, ref string) (*Ticket, error) {
	if amount <= 0 {
		return nil, ErrAmount
	}
	a, err := w.get(uid)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	if a.data.Blocked {
		a.mu.Unlock()
		return nil, ErrBlocked
	}
	if a.inProgress {
		a.mu.Unlock()
		return nil, ErrSpinInProgress
	}
	if a.data.Balance < amount {
		a.mu.Unlock()
		return nil, ErrInsufficient
	}
	a.inProgress = true
	tx := w.apply(a, Entry{Type: TxBet, Amount: amount, Ref: ref}, -amount, StatusCompleted)
	a.data.Wagered += amount
	bal := a.data.Balance
	a.mu.Unlock()

	w.notify(uid, bal)
	return &Ticket{ID: uuid.NewString(), UID: uid, Amount: amount, Ref: ref, TxID: tx.ID}, nil
}

// Settle 入帳 payout（> 0 時記 win 交易），並更新統計。重複結算回傳 ErrSettled。
func (w *Wallet) Settle(t *Ticket, payout int64) (int64, error) {
	if t == nil {
		return 0, errs.NewWarn("nil ticket")
	}
	if payout < 0 {
		return 0, errs.NewWarn("payout must >= 0")
	}
	if !t.settled.CompareAndSwap(false, true) {
		return 0, ErrSettled
	}
	a, err := w.get(t.UID)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	if payout > 0 {
		w.apply(a, Entry{Type: TxWin, Amount: payout, Ref: t.Ref}, payout, StatusCompleted)
	}
	if payout > t.Amount {
		a.data.TotalWins += payout - t.Amount
	} else {
		a.data.TotalLosses += t.Amount - payout
	}
	a.data.GamesPlayed++
	if w.vipEnabled() {
		before := a.data.Wagered - t.Amount
		a.data.VIPPoints += a.data.Wagered/PointsPer - before/PointsPer
	}
	a.inProgress = false
	bal := a.data.Balance
	a.mu.Unlock()

	if payout > 0 {
		w.notify(t.UID, bal)
	}
	return bal, nil
}

// Cancel 引擎失敗時退回押注。
func (w *Wallet) Cancel(t *Ticket) (int64, error) {
	if t == nil {
		return 0, errs.NewWarn("nil ticket")
	}
	if !t.settled.CompareAndSwap(false, true) {
		return 0, ErrSettled
	}
	a, err := w.get(t.UID)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	w.apply(a, Entry{Type: TxRefund, Amount: t.Amount, Ref: t.Ref}, t.Amount, StatusCompleted)
	a.data.Wagered -= t.Amount
	a.inProgress = false
	bal := a.data.Balance
	a.mu.Unlock()

	w.log.Warn("stake refunded", "uid", t.UID, "amount", t.Amount, "ref", t.Ref)
	w.notify(t.UID, bal)
	return bal, nil
}

// Entry 出入帳的描述
type Entry struct {
	Type   TxType
	Amount int64 // 交易金額（總額）
	Fee    int64 // 手續費；入帳時實際入帳 Amount - Fee
	Method string
	Ref    string
	Status TxStatus // 空值視為 completed
}

// Credit 入帳 Amount - Fee。
func (w *Wallet) Credit(uid string, e Entry) (*Transaction, error) {
	return w.CreditIf(uid, e, nil)
}

// CreditIf 與 Credit 相同，但先在帳戶鎖內執行 guard；guard 回傳錯誤時不入帳。
// 同一帳戶的 CreditIf 互斥，guard 讀帳本（Sum、Transactions）的結果在入帳前不會被其他入帳改變。
// guard 內不可再呼叫同一帳戶的 Credit/Debit。
func (w *Wallet) CreditIf(uid string, e Entry, guard func() error) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrAmount
	}
	if e.Fee < 0 || e.Fee >= e.Amount {
		return nil, errs.Warnf("invalid fee %d for amount %d", e.Fee, e.Amount)
	}
	a, err := w.get(uid)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	if a.data.Blocked && e.Type == TxDeposit {
		a.mu.Unlock()
		return nil, ErrBlocked
	}
	if guard != nil {
		if err := guard(); err != nil {
			a.mu.Unlock()
			return nil, err
		}
	}
	tx := w.apply(a, e, e.Amount-e.Fee, statusOr(e.Status))
	bal := a.data.Balance
	a.mu.Unlock()

	w.notify(uid, bal)
	return tx.clone(), nil
}

// Debit 扣款 Amount；餘額不足回傳 ErrInsufficient。
func (w *Wallet) Debit(uid string, e Entry) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrAmount
	}
	a, err := w.get(uid)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	if a.data.Blocked {
		a.mu.Unlock()
		return nil, ErrBlocked
	}
	if a.data.Balance < e.Amount {
		a.mu.Unlock()
		return nil, ErrInsufficient
	}
	tx := w.apply(a, e, -e.Amount, statusOr(e.Status))
	bal := a.data.Balance
	a.mu.Unlock()

	w.notify(uid, bal)
	return tx.clone(), nil
}

// Resolve 把 pending 交易改為 completed 或 failed，並回傳更新後的交易。
// 不處理退款；退款由呼叫端另記一筆 refund。
func (w *Wallet) Resolve(txid string, status TxStatus) (*Transaction, error) {
	if status != StatusCompleted && status != StatusFailed {
		return nil, errs.Warnf("invalid target status %q", status)
	}
	w.lmu.Lock()
	tx, ok := w.byID[txid]
	if !ok {
		w.lmu.Unlock()
		return nil, ErrNoTx
	}
	if tx.Status != StatusPending {
		w.lmu.Unlock()
		return nil, ErrTxState
	}
	tx.Status = status
	tx.UpdatedAt = w.now()
	out := tx.clone()
	w.lmu.Unlock()

	if status == StatusCompleted {
		if a, err := w.get(out.UserID); err == nil {
			a.mu.Lock()
			a.countCompleted(out)
			a.mu.Unlock()
		}
	}
	return out, nil
}

func (w *Wallet) Get(uid string) (Account, error) {
	a, err := w.get(uid)
	if err != nil {
		return Account{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data, nil
}

func (w *Wallet) Balance(uid string) (int64, error) {
	acc, err := w.Get(uid)
	return acc.Balance, err
}

// Accounts 依 UID 排序
func (w *Wallet) Accounts() []Account {
	w.mu.RLock()
	list := make([]*account, 0, len(w.accounts))
	for _, a := range w.accounts {
		list = append(list, a)
	}
	w.mu.RUnlock()
	out := make([]Account, 0, len(list))
	for _, a := range list {
		a.mu.Lock()
		out = append(out, a.data)
		a.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

func (w *Wallet) get(uid string) (*account, error) {
	w.mu.RLock()
	a, ok := w.accounts[uid]
	w.mu.RUnlock()
	if !ok {
		return nil, ErrNoAccount
	}
	return a, nil
}

// apply 必須持有 a.mu
func (w *Wallet) apply(a *account, e Entry, delta int64, status TxStatus) *Transaction {
	now := w.now()
	before := a.data.Balance
	a.data.Balance += delta
	a.data.LastActivity = now
	tx := &Transaction{
		ID:            uuid.NewString(),
		UserID:        a.data.UID,
		Email:         a.data.Email,
		Type:          e.Type,
		Amount:        e.Amount,
		Fee:           e.Fee,
		Status:        status,
		Method:        e.Method,
		BalanceBefore: before,
		BalanceAfter:  a.data.Balance,
		Ref:           e.Ref,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == StatusCompleted {
		a.countCompleted(tx)
	}
	w.lmu.Lock()
	w.ledger = append(w.ledger, tx)
	w.byID[tx.ID] = tx
	w.lmu.Unlock()
	return tx
}

// countCompleted 只有完成的出入金才計入累計
func (a *account) countCompleted(tx *Transaction) {
	switch tx.Type {
	case TxDeposit:
		a.data.TotalDeposits += tx.Amount
	case TxWithdraw:
		a.data.TotalWithdraws += tx.Amount
	}
}

func (w *Wallet) vipEnabled() bool {
	if w.sets == nil {
		return true
	}
	return w.sets.Get().VIPProgramEnabled
}

func (w *Wallet) notify(uid string, balance int64) {
	w.omu.RLock()
	fn := w.onChange
	w.omu.RUnlock()
	if fn != nil {
		fn(uid, balance)
	}
}

func statusOr(s TxStatus) TxStatus {
	if s == "" {
		return StatusCompleted
	}
	return s
}
