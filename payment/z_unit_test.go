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

package payment

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func goodCard() *Card {
	return &Card{Number: "4111 1111 1111 1111", Expiry: "12/99", CVV: "123", Holder: "IVAN PETROV"}
}

type fixture struct {
	svc   *Service
	w     *wallet.Wallet
	sets  *settings.Store
	notes *notify.Center
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	limits := settings.Default()
	limits.MaxDailyDeposit = 100000
	limits.MaxWithdraw = 50000
	sets := settings.NewStore(limits)
	w := wallet.New(nil, sets)
	if err := w.Open("u1", "u1@example.com", 0); err != nil {
		t.Fatalf("open: %v", err)
	}
	notes := notify.New(nil)
	svc, err := New(nil, w, sets, notes)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return &fixture{svc: svc, w: w, sets: sets, notes: notes}
}

func TestFee(t *testing.T) {
	qiwi, _ := Lookup("qiwi")
	yandex, _ := Lookup("YANDEX")
	visa, _ := Lookup("visa")
	cases := []struct {
		m      Method
		amount int64
		fee    int64
	}{
		{qiwi, 1000, 20},
		{qiwi, 525, 11}, // 10.5 -> 11
		{qiwi, 512, 10}, // 10.24 -> 10
		{yandex, 150, 2}, // 1.5 -> 2
		{yandex, 149, 1},
		{visa, 500000, 0},
	}
	for _, c := range cases {
		if got := c.m.Fee(c.amount); got != c.fee {
			t.Fatalf("%s fee(%d)=%d want %d", c.m.ID, c.amount, got, c.fee)
		}
	}
	if _, ok := Lookup("paypal"); ok {
		t.Fatalf("unexpected method")
	}
	if len(Methods()) != 6 || len(QuickAmounts) != 6 {
		t.Fatalf("unexpected method table")
	}
}

func TestCardValid(t *testing.T) {
	if err := goodCard().Valid(testNow); err != nil {
		t.Fatalf("valid card: %v", err)
	}
	thisMonth := goodCard()
	thisMonth.Expiry = "10/26"
	if err := thisMonth.Valid(testNow); err != nil {
		t.Fatalf("card valid through end of month: %v", err)
	}
	bad := []func(c *Card){
		func(c *Card) { c.Number = "4111 1111 1111 1112" },
		func(c *Card) { c.Number = "4111" },
		func(c *Card) { c.Number = "4111 1111 1111 111a" },
		func(c *Card) { c.Expiry = "09/26" },
		func(c *Card) { c.Expiry = "13/30" },
		func(c *Card) { c.Expiry = "01/20" },
		func(c *Card) { c.Expiry = "1230" },
		func(c *Card) { c.CVV = "12" },
		func(c *Card) { c.CVV = "12a" },
		func(c *Card) { c.Holder = "  " },
	}
	for i, mut := range bad {
		c := goodCard()
		mut(c)
		if err := c.Valid(testNow); errs.Level(err) != errs.Warn {
			t.Fatalf("case %d: expected warn, got %v", i, err)
		}
	}
	var nilCard *Card
	if err := nilCard.Valid(testNow); err == nil {
		t.Fatalf("nil card must fail")
	}
	if goodCard().Masked() != "**** 1111" {
		t.Fatalf("masked=%q", goodCard().Masked())
	}
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Deposit("u1", Request{Method: "visa", Amount: 5000}); err == nil {
		t.Fatalf("visa without card must fail")
	}
	if _, err := f.svc.Deposit("u1", Request{Method: "sbp", Amount: 50}); err == nil {
		t.Fatalf("below method min must fail")
	}
	tx, err := f.svc.Deposit("u1", Request{Method: "qiwi", Amount: 10000})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if tx.Fee != 200 || tx.Status != wallet.StatusCompleted || tx.BalanceAfter != 9800 {
		t.Fatalf("unexpected tx %+v", tx)
	}
	// 首存贈金 100%
	acc, _ := f.w.Get("u1")
	if acc.Balance != 19800 || acc.TotalDeposits != 10000 {
		t.Fatalf("unexpected account %+v", acc)
	}
	if _, err := f.svc.Deposit("u1", Request{Method: "visa", Amount: 5000, Card: goodCard()}); err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if acc, _ := f.w.Get("u1"); acc.Balance != 24800 {
		t.Fatalf("no bonus on second deposit, balance=%d", acc.Balance)
	}
	if f.notes.UnreadCount("u1") != 3 {
		t.Fatalf("unread=%d", f.notes.UnreadCount("u1"))
	}

	// 24h 內累計 15000，上限 100000
	if _, err := f.svc.Deposit("u1", Request{Method: "crypto", Amount: 90000}); !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("expected daily limit, got %v", err)
	}
	if _, err := f.svc.Deposit("u1", Request{Method: "crypto", Amount: 85000}); err != nil {
		t.Fatalf("deposit at limit: %v", err)
	}
	if _, err := f.svc.Deposit("u1", Request{Method: "sbp", Amount: 100}); !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("limit reached, got %v", err)
	}
}

func TestWithdrawApproveReject(t *testing.T) {
	f := newFixture(t)
	_, _ = f.w.Credit("u1", wallet.Entry{Type: wallet.TxBonus, Amount: 100000})

	if _, err := f.svc.Withdraw("u1", Request{Method: "sbp", Amount: 500}); err == nil {
		t.Fatalf("below minWithdraw must fail")
	}
	if _, err := f.svc.Withdraw("u1", Request{Method: "sbp", Amount: 60000}); err == nil {
		t.Fatalf("above maxWithdraw must fail")
	}
	a, err := f.svc.Withdraw("u1", Request{Method: "qiwi", Amount: 10000})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if a.Status != wallet.StatusPending || a.Fee != 200 || a.BalanceAfter != 90000 {
		t.Fatalf("unexpected tx %+v", a)
	}
	b, _ := f.svc.Withdraw("u1", Request{Method: "sbp", Amount: 20000})

	if _, err := f.svc.Approve(a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Approve(a.ID); !errors.Is(err, wallet.ErrTxState) {
		t.Fatalf("double approve must fail, got %v", err)
	}
	if _, err := f.svc.Reject(b.ID, "suspicious"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	acc, _ := f.w.Get("u1")
	if acc.Balance != 90000 || acc.TotalWithdraws != 10000 {
		t.Fatalf("unexpected account %+v", acc)
	}
	got, _ := f.w.Tx(b.ID)
	if got.Status != wallet.StatusFailed {
		t.Fatalf("rejected tx status %s", got.Status)
	}

	bonus := f.w.Transactions(wallet.Filter{Type: wallet.TxBonus})
	if _, err := f.svc.Approve(bonus[0].ID); !errors.Is(err, ErrNotWithdraw) {
		t.Fatalf("expected not-withdraw error, got %v", err)
	}
	if _, err := f.svc.Withdraw("u1", Request{Method: "sbp", Amount: 50000}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := f.svc.Withdraw("u1", Request{Method: "sbp", Amount: 50000}); !errors.Is(err, wallet.ErrInsufficient) {
		t.Fatalf("expected insufficient, got %v", err)
	}
}

func TestConcurrentDepositsRespectLimitAndBonus(t *testing.T) {
	for round := 0; round < 50; round++ {
		f := newFixture(t)
		var wg sync.WaitGroup
		var mu sync.Mutex
		ok := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Deposit("u1", Request{Method: "sbp", Amount: 60000})
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				} else if !errors.Is(err, ErrDailyLimit) {
					t.Errorf("deposit: %v", err)
				}
			}()
		}
		wg.Wait()
		// 上限 100000：八筆 60000 只能成功一筆
		if ok != 1 {
			t.Fatalf("round %d: %d deposits passed the daily limit", round, ok)
		}
		if used := f.w.Sum(wallet.Filter{UserID: "u1", Type: wallet.TxDeposit}); used != 60000 {
			t.Fatalf("round %d: deposited %d", round, used)
		}
		if n := len(f.w.Transactions(wallet.Filter{UserID: "u1", Type: wallet.TxBonus})); n != 1 {
			t.Fatalf("round %d: %d first-deposit bonuses", round, n)
		}
		if acc, _ := f.w.Get("u1"); acc.Balance != 120000 {
			t.Fatalf("round %d: balance %d", round, acc.Balance)
		}
	}
}
