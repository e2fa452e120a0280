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

package wallet

import (
	"strings"
	"time"
)

type TxType string

const (
	TxDeposit  TxType = "deposit"
	TxWithdraw TxType = "withdraw"
	TxBet      TxType = "bet"
	TxWin      TxType = "win"
	TxRefund   TxType = "refund"
	TxEntryFee TxType = "entry_fee"
	TxPrize    TxType = "prize"
	TxBonus    TxType = "bonus"
)

type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusCompleted TxStatus = "completed"
	StatusFailed    TxStatus = "failed"
)

func ParseTxType(s string) (TxType, bool) {
	switch t := TxType(strings.ToLower(strings.TrimSpace(s))); t {
	case TxDeposit, TxWithdraw, TxBet, TxWin, TxRefund, TxEntryFee, TxPrize, TxBonus:
		return t, true
	}
	return "", false
}

func ParseTxStatus(s string) (TxStatus, bool) {
	switch st := TxStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusCompleted, StatusFailed:
		return st, true
	}
	return "", false
}

// Transaction 帳本的一筆紀錄
type Transaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Type          TxType    `json:"type"`
	Amount        int64     `json:"amount"`
	Fee           int64     `json:"fee"`
	Status        TxStatus  `json:"status"`
	Method        string    `json:"method,omitempty"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Ref           string    `json:"ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t *Transaction) clone() *Transaction {
	c := *t
	return &c
}

// Filter 帳本查詢條件；零值欄位不過濾。
type Filter struct {
	UserID string
	Type   TxType
	Status TxStatus
	Since  time.Time
	Limit  int
}

func (f Filter) match(t *Transaction) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && t.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// Transactions 依時間新到舊回傳符合條件的交易。
func (w *Wallet) Transactions(f Filter) []Transaction {
	w.lmu.RLock()
	defer w.lmu.RUnlock()
	out := make([]Transaction, 0, 16)
	for i := len(w.ledger) - 1; i >= 0; i-- {
		t := w.ledger[i]
		if !f.match(t) {
			continue
		}
		out = append(out, *t)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

func (w *Wallet) Tx(id string) (Transaction, error) {
	w.lmu.RLock()
	defer w.lmu.RUnlock()
	t, ok := w.byID[id]
	if !ok {
		return Transaction{}, ErrNoTx
	}
	return *t, nil
}

// Sum 累加符合條件的交易金額（不含 failed）。
func (w *Wallet) Sum(f Filter) int64 {
	w.lmu.RLock()
	defer w.lmu.RUnlock()
	var sum int64
	for _, t := range w.ledger {
		if t.Status == StatusFailed || !f.match(t) {
			continue
		}
		sum += t.Amount
	}
	return sum
}
