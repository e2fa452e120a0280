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

// Package client 是 /v1 API 的 Go 客戶端（cmd/bot 與整合測試使用）。
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/dealer"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/lobby"
	"github.com/zintix-labs/royale/payment"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/tournament"
	"github.com/zintix-labs/royale/wallet"
)

const DefaultTimeout = 10 * time.Second

// APIError 伺服器回傳的非 2xx 回應
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"error"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api %d: %s (request %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// StatusOf err 為 APIError 時回傳其狀態碼，否則為 0。
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// Client 同一個 Client 代表一位登入者；不同玩家請各自建立。
type Client struct {
	rc *resty.Client
}

// New baseURL 例如 http://localhost:5808
func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

// NewWithHTTP 使用自訂的 http.Client（例如 httptest.Server.Client()）。
func NewWithHTTP(baseURL string, hc *http.Client) *Client {
	rc := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

// SetToken 換成其他 session 的 token
func (c *Client) SetToken(token string) { c.rc.SetAuthToken(token) }

func (c *Client) Token() string { return c.rc.Token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.rc.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return errs.Wrap(err, method+" "+path)
	}
	if resp.IsError() {
		ae, _ := resp.Error().(*APIError)
		if ae == nil || ae.Message == "" {
			ae = &APIError{Message: http.StatusText(resp.StatusCode())}
		}
		ae.Status = resp.StatusCode()
		return ae
	}
	return nil
}

func gidPath(prefix string, gid rules.GID, suffix string) string {
	return prefix + strconv.FormatUint(uint64(gid), 10) + suffix
}

// Register 成功後自動帶上 token
func (c *Client) Register(ctx context.Context, in account.RegisterInput) (*account.Session, error) {
	s := new(account.Session)
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", in, s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Login 成功後自動帶上 token
func (c *Client) Login(ctx context.Context, email, password string) (*account.Session, error) {
	s := new(account.Session)
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", body, s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) Me(ctx context.Context) (*account.Profile, error) {
	p := new(account.Profile)
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) Lobby(ctx context.Context) (*lobby.Page, error) {
	p := new(lobby.Page)
	if err := c.do(ctx, http.MethodGet, "/v1/lobby", nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) Games(ctx context.Context) ([]lobby.Game, error) {
	var out struct {
		Games []lobby.Game `json:"games"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/games", nil, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

func (c *Client) SpinSlots(ctx context.Context, gid rules.GID, bet int64) (*dto.PlayResult, error) {
	res := new(dto.PlayResult)
	body := dto.PlayRequest{GameID: gid, Bet: bet}
	if err := c.do(ctx, http.MethodPost, gidPath("/v1/games/slots/", gid, "/spin"), body, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) SpinRoulette(ctx context.Context, gid rules.GID, bets []games.BetInput) (*dto.PlayResult, error) {
	res := new(dto.PlayResult)
	body := dto.PlayRequest{GameID: gid, Bets: bets}
	if err := c.do(ctx, http.MethodPost, gidPath("/v1/games/roulette/", gid, "/spin"), body, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Jackpot(ctx context.Context, gid rules.GID) (int64, error) {
	var out struct {
		Value int64 `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, gidPath("/v1/games/slots/", gid, "/jackpot"), nil, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

func (c *Client) History(ctx context.Context, gid rules.GID) ([]rules.Pocket, error) {
	var out struct {
		History []rules.Pocket `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, gidPath("/v1/games/roulette/", gid, "/history"), nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Verify 以記錄的快照重跑一局並比對結果
func (c *Client) Verify(ctx context.Context, roundID string) (*dealer.Verification, error) {
	v := new(dealer.Verification)
	if err := c.do(ctx, http.MethodGet, "/v1/rounds/"+roundID+"/verify", nil, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) Deposit(ctx context.Context, req payment.Request) (*wallet.Transaction, error) {
	tx := new(wallet.Transaction)
	if err := c.do(ctx, http.MethodPost, "/v1/payments/deposit", req, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) Withdraw(ctx context.Context, req payment.Request) (*wallet.Transaction, error) {
	tx := new(wallet.Transaction)
	if err := c.do(ctx, http.MethodPost, "/v1/payments/withdraw", req, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) Tournaments(ctx context.Context) ([]tournament.View, error) {
	var out struct {
		Tournaments []tournament.View `json:"tournaments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/tournaments", nil, &out); err != nil {
		return nil, err
	}
	return out.Tournaments, nil
}

func (c *Client) JoinTournament(ctx context.Context, id string) (*tournament.View, error) {
	v := new(tournament.View)
	if err := c.do(ctx, http.MethodPost, "/v1/tournaments/"+id+"/join", nil, v); err != nil {
		return nil, err
	}
	return v, nil
}
