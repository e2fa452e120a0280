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
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zintix-labs/royale/settings"
)

func newWallet(t *testing.T, balance int64) *Wallet {
	t.Helper()
	w := New(nil, settings.NewStore(settings.Default()))
	if err := w.Open("u1", "u1@example.com", balance); err != nil {
		t.Fatalf("open: %v", err)
	}
	return w
}

func TestStakeSettle(t *testing.T) {
	w := newWallet(t, 1000)
	var last int64
	w.OnChange(func(uid string, bal int64) { last = bal })

	tk, err := w.Stake("u1", 300, "r1")
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if bal, _ := w.Balance("u1"); bal != 700 || last != 700 {
		t.Fatalf("balance after stake=%d notify=%d", bal, last)
	}
	bal, err := w.Settle(tk, 1050)
	if err != nil || bal != 1750 {
		t.Fatalf("settle bal=%d err=%v", bal, err)
	}
	if _, err := w.Settle(tk, 10); !errors.Is(err, ErrSettled) {
		t.Fatalf("expected settled error, got %v", err)
	}
	acc, _ := w.Get("u1")
	if acc.TotalWins != 750 || acc.TotalLosses != 0 || acc.GamesPlayed != 1 || acc.Wagered != 300 || acc.VIPPoints != 3 {
		t.Fatalf("unexpected account %+v", acc)
	}

	// 帳本前後餘額一致
	txs := w.Transactions(Filter{UserID: "u1"})
	if len(txs) != 3 {
		t.Fatalf("expected 3 txs, got %d", len(txs))
	}
	for _, tx := range txs {
		switch tx.Type {
		case TxBet:
			if tx.BalanceAfter != tx.BalanceBefore-tx.Amount {
				t.Fatalf("bet tx inconsistent %+v", tx)
			}
		default:
			if tx.BalanceAfter != tx.BalanceBefore+tx.Amount-tx.Fee {
				t.Fatalf("credit tx inconsistent %+v", tx)
			}
		}
	}
	if acc.TotalDeposits != 0 {
		t.Fatalf("bonus must not count as deposit")
	}
}

func TestStakeRefusals(t *testing.T) {
	w := newWallet(t, 100)
	if _, err := w.Stake("u1", 0, ""); !errors.Is(err, ErrAmount) {
		t.Fatalf("expected amount error, got %v", err)
	}
	if _, err := w.Stake("u1", 101, ""); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expected insufficient, got %v", err)
	}
	if _, err := w.Stake("nobody", 1, ""); !errors.Is(err, ErrNoAccount) {
		t.Fatalf("expected no account, got %v", err)
	}
	tk, _ := w.Stake("u1", 10, "")
	if _, err := w.Stake("u1", 10, ""); !errors.Is(err, ErrSpinInProgress) {
		t.Fatalf("expected in progress, got %v", err)
	}
	if bal, err := w.Cancel(tk); err != nil || bal != 100 {
		t.Fatalf("cancel bal=%d err=%v", bal, err)
	}
	if acc, _ := w.Get("u1"); acc.Wagered != 0 || acc.GamesPlayed != 0 {
		t.Fatalf("cancel must revert wager %+v", acc)
	}

	_ = w.SetBlocked("u1", true)
	if _, err := w.Stake("u1", 10, ""); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected blocked, got %v", err)
	}
	if err := w.Open("u1", "x", 0); !errors.Is(err, ErrExists) {
		t.Fatalf("expected exists, got %v", err)
	}
}

func TestConcurrentStakeOnlyOneWins(t *testing.T) {
	w := newWallet(t, 1000)
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.Stake("u1", 10, ""); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	if ok.Load() != 1 {
		t.Fatalf("expected exactly one stake, got %d", ok.Load())
	}
}

func TestVIPDisabled(t *testing.T) {
	sets := settings.NewStore(settings.Default())
	s := sets.Get()
	s.VIPProgramEnabled = false
	_, _ = sets.Update(s)
	w := New(nil, sets)
	_ = w.Open("u1", "", 1000)
	tk, _ := w.Stake("u1", 500, "")
	_, _ = w.Settle(tk, 0)
	if acc, _ := w.Get("u1"); acc.VIPPoints != 0 || acc.TotalLosses != 500 {
		t.Fatalf("unexpected %+v", acc)
	}
}

func TestCreditDebitResolve(t *testing.T) {
	w := newWallet(t, 0)
	tx, err := w.Credit("u1", Entry{Type: TxDeposit, Amount: 1000, Fee: 20, Method: "qiwi"})
	if err != nil || tx.BalanceAfter != 980 {
		t.Fatalf("credit tx=%+v err=%v", tx, err)
	}
	if _, err := w.Credit("u1", Entry{Type: TxDeposit, Amount: 10, Fee: 10}); err == nil {
		t.Fatalf("fee must be < amount")
	}
	if _, err := w.Debit("u1", Entry{Type: TxWithdraw, Amount: 5000}); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expected insufficient, got %v", err)
	}
	wd, err := w.Debit("u1", Entry{Type: TxWithdraw, Amount: 500, Status: StatusPending})
	if err != nil || wd.Status != StatusPending {
		t.Fatalf("debit %+v %v", wd, err)
	}
	acc, _ := w.Get("u1")
	if acc.Balance != 480 || acc.TotalDeposits != 1000 || acc.TotalWithdraws != 0 {
		t.Fatalf("unexpected %+v", acc)
	}
	if _, err := w.Resolve(wd.ID, StatusCompleted); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if acc, _ := w.Get("u1"); acc.TotalWithdraws != 500 {
		t.Fatalf("completed withdraw should count %+v", acc)
	}
	if _, err := w.Resolve(wd.ID, StatusFailed); !errors.Is(err, ErrTxState) {
		t.Fatalf("expected state error, got %v", err)
	}
	if _, err := w.Resolve("nope", StatusFailed); !errors.Is(err, ErrNoTx) {
		t.Fatalf("expected no tx, got %v", err)
	}
	if got := w.Sum(Filter{UserID: "u1", Type: TxDeposit}); got != 1000 {
		t.Fatalf("sum=%d", got)
	}
	if got := w.Transactions(Filter{Status: StatusPending}); len(got) != 0 {
		t.Fatalf("no pending expected, got %d", len(got))
	}
	if got := w.Transactions(Filter{Limit: 1}); len(got) != 1 || got[0].ID != wd.ID {
		t.Fatalf("newest first with limit")
	}
}

func TestCreditIfGuardSerialized(t *testing.T) {
	w := newWallet(t, 0)
	stop := errors.New("over")
	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.CreditIf("u1", Entry{Type: TxDeposit, Amount: 400, Method: "sbp"}, func() error {
				if w.Sum(Filter{UserID: "u1", Type: TxDeposit})+400 > 1000 {
					return stop
				}
				return nil
			})
			if err == nil {
				ok.Add(1)
			} else if !errors.Is(err, stop) {
				t.Errorf("credit: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok.Load() != 2 {
		t.Fatalf("%d guarded credits passed, want 2", ok.Load())
	}
	if bal, _ := w.Balance("u1"); bal != 800 {
		t.Fatalf("balance %d", bal)
	}
}
