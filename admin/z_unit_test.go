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

package admin

import (
	"errors"
	"testing"
	"time"

	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/notify"
	"github.com/zintix-labs/royale/payment"
	"github.com/zintix-labs/royale/recorder"
	"github.com/zintix-labs/royale/rounds"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
	"golang.org/x/crypto/bcrypt"
)

type fakeOnline int

func (f fakeOnline) Online() int { return int(f) }

type fixture struct {
	p     *Panel
	acc   *account.Service
	w     *wallet.Wallet
	pay   *payment.Service
	rt    *royale.Runtime
	notes *notify.Center
	sets  *settings.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r, err := royale.NewDefault()
	if err != nil {
		t.Fatalf("new royale: %v", err)
	}
	rt, err := r.BuildRuntime(1)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	t.Cleanup(rt.Close)
	sets := settings.NewStore(settings.Default())
	w := wallet.New(nil, sets)
	tok, err := account.NewTokens([]byte("0123456789abcdef0123"), time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	acc, err := account.NewService(nil, account.Options{StartBalance: 1000, HashCost: bcrypt.MinCost}, tok, w, rounds.NewLog(0), sets)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	notes := notify.New(nil)
	pay, err := payment.New(nil, w, sets, notes)
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	p, err := New(nil, Deps{Accounts: acc, Wallet: w, Payments: pay, Runtime: rt, Live: recorder.NewLiveRecorder(),
		Notes: notes, Sets: sets, Online: fakeOnline(3)})
	if err != nil {
		t.Fatalf("panel: %v", err)
	}
	return &fixture{p: p, acc: acc, w: w, pay: pay, rt: rt, notes: notes, sets: sets}
}

func (f *fixture) register(t *testing.T, name, email string) string {
	t.Helper()
	s, err := f.acc.Register(account.RegisterInput{Name: name, Email: email, Password: "secret-123", ConfirmPassword: "secret-123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return s.User.ID
}

func TestOverviewAndWithdrawFlow(t *testing.T) {
	f := newFixture(t)
	uid := f.register(t, "Anna", "anna@example.com")
	if _, err := f.pay.Deposit(uid, payment.Request{Method: "sbp", Amount: 5000}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	wd, err := f.pay.Withdraw(uid, payment.Request{Method: "sbp", Amount: 2000})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	o := f.p.Overview()
	if o.Users != 1 || o.Online != 3 || o.Deposits != 5000 || o.Withdraws != 0 || o.PendingWithdraws != 1 || o.ActiveGames != 2 {
		t.Fatalf("unexpected overview %+v", o)
	}

	pending, err := f.p.Transactions(TxQuery{Type: "withdraw", Status: "pending"})
	if err != nil || len(pending) != 1 || pending[0].ID != wd.ID {
		t.Fatalf("unexpected pending %+v err=%v", pending, err)
	}
	if _, err := f.p.Transactions(TxQuery{Type: "lottery"}); errs.Level(err) != errs.Warn {
		t.Fatalf("expected warn for bad type, got %v", err)
	}
	if _, err := f.p.Approve(wd.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.p.Reject(wd.ID, "late"); err == nil {
		t.Fatalf("expected reject of completed withdrawal to fail")
	}
	if o := f.p.Overview(); o.Withdraws != 2000 || o.PendingWithdraws != 0 {
		t.Fatalf("unexpected overview after approve %+v", o)
	}
}

func TestUsersAndStatus(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "Anna", "anna@example.com")
	f.register(t, "Boris", "boris@example.com")

	if got, _ := f.p.Users("ann", ""); len(got) != 1 || got[0].ID != a {
		t.Fatalf("unexpected search result %+v", got)
	}
	if _, err := f.p.Users("", "sleeping"); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if _, err := f.p.SetUserStatus(a, "blocked"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got, _ := f.p.Users("", "blocked"); len(got) != 1 || got[0].ID != a {
		t.Fatalf("unexpected blocked list %+v", got)
	}
	if _, err := f.w.Stake(a, 100, "r1"); !errors.Is(err, wallet.ErrBlocked) {
		t.Fatalf("expected blocked wallet, got %v", err)
	}
}

func TestGamesAndSettings(t *testing.T) {
	f := newFixture(t)
	uid := f.register(t, "Anna", "anna@example.com")

	if err := f.p.SetGameMaintenance(1001, true); err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if err := f.p.SetGameMaintenance(9999, true); errs.Level(err) != errs.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	stats := f.p.Games()
	if len(stats) != 2 || !stats[0].Maintenance || stats[1].Maintenance || stats[0].Name == "" {
		t.Fatalf("unexpected game stats %+v", stats)
	}

	s := f.p.Settings()
	s.MinWithdraw = s.MaxWithdraw + 1
	if _, err := f.p.UpdateSettings(s); err == nil {
		t.Fatalf("expected invalid settings")
	}
	s = f.p.Settings()
	s.MaintenanceMode = true
	if cur, err := f.p.UpdateSettings(s); err != nil || !cur.MaintenanceMode {
		t.Fatalf("update: %+v %v", cur, err)
	}
	if f.notes.UnreadCount(uid) != 1 {
		t.Fatalf("expected maintenance notice")
	}

	n, err := f.p.Broadcast("Hello", "New games soon")
	if err != nil || n != 1 {
		t.Fatalf("broadcast n=%d err=%v", n, err)
	}
	if _, err := f.p.Broadcast("", "x"); err == nil {
		t.Fatalf("expected empty title error")
	}
}
