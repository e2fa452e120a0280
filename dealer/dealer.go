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

// Package dealer 串起一局的完整流程：報價、扣款、開獎、結算與紀錄。
//
// 餘額只在扣款時減少押注總額，只在結算時增加派彩；引擎失敗時退回押注。
package dealer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/recorder"
	"github.com/zintix-labs/royale/rounds"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/tournament"
	"github.com/zintix-labs/royale/wallet"
)

// PushJackpot 彩金池更新的推送類型，與 hub 一致
const PushJackpot = "JACKPOT_UPDATE"

var (
	ErrCasinoMaintenance = errs.NewForbidden("casino under maintenance")
	ErrWrongGame         = errs.NewNotFound("game not found for this logic")
	ErrNotOwner          = errs.NewForbidden("round belongs to another player")
)

// Broadcaster 全體推送；hub.Hub 滿足此介面。
type Broadcaster interface {
	Broadcast(typ string, data any)
}

// JackpotUpdate 彩金池推送內容
type JackpotUpdate struct {
	GID    rules.GID `json:"gid"`
	Value  int64     `json:"value"`
	Winner string    `json:"winner,omitempty"`
	Paid   int64     `json:"paid,omitempty"`
}

type Dealer struct {
	log    *slog.Logger
	rt     *royale.Runtime
	wallet *wallet.Wallet
	rounds *rounds.Log
	live   *recorder.LiveRecorder
	board  *tournament.Board
	sets   *settings.Store
	pub    Broadcaster
}

// Deps board 與 pub 可為 nil
type Deps struct {
	Runtime *royale.Runtime
	Wallet  *wallet.Wallet
	Rounds  *rounds.Log
	Live    *recorder.LiveRecorder
	Board   *tournament.Board
	Sets    *settings.Store
	Pub     Broadcaster
}

func New(log *slog.Logger, d Deps) (*Dealer, error) {
	if d.Runtime == nil || d.Wallet == nil || d.Rounds == nil || d.Live == nil || d.Sets == nil {
		return nil, errs.NewFatal("dealer: nil dependency")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	for _, id := range d.Runtime.IDs() {
		if gs, err := d.Runtime.Setting(id); err == nil {
			d.Live.Track(id, gs.GameName)
		}
	}
	return &Dealer{
		log:    log.With("component", "dealer"),
		rt:     d.Runtime,
		wallet: d.Wallet,
		rounds: d.Rounds,
		live:   d.Live,
		board:  d.Board,
		sets:   d.Sets,
		pub:    d.Pub,
	}, nil
}

// Spin 以 uid 的錢包開一局。logic 不為空時，gid 必須屬於該邏輯。
func (d *Dealer) Spin(ctx context.Context, uid string, logic rules.LogicKey, req *dto.PlayRequest) (*dto.PlayResult, error) {
	if req == nil {
		return nil, errs.NewWarn("nil play request")
	}
	if d.sets.Get().MaintenanceMode {
		return nil, ErrCasinoMaintenance
	}
	gs, err := d.rt.Setting(req.GameID)
	if err != nil {
		return nil, royale.ErrUnknownGame
	}
	if logic != "" && gs.LogicKey != logic {
		return nil, ErrWrongGame
	}
	req.UID = uid
	greq := req.Game()

	stake, err := d.rt.Quote(ctx, req.GameID, greq)
	if err != nil {
		return nil, err
	}
	roundID := uuid.NewString()
	ticket, err := d.wallet.Stake(uid, stake, roundID)
	if err != nil {
		return nil, err
	}

	res, err := d.rt.Play(ctx, req)
	if err == nil && res.Stake != stake {
		err = errs.Fatalf("stake mismatch: quoted %d, played %d", stake, res.Stake)
	}
	if err != nil {
		if _, cerr := d.wallet.Cancel(ticket); cerr != nil {
			d.log.Error("stake refund failed", "uid", uid, "round", roundID, "err", cerr)
		}
		return nil, err
	}

	bal, err := d.wallet.Settle(ticket, res.Win)
	if err != nil {
		d.log.Error("settle failed", "uid", uid, "round", roundID, "win", res.Win, "err", err)
		return nil, err
	}
	res.RoundID = roundID
	res.Balance = bal

	d.live.Record(res.GameID, res.GameName, uid, &games.Outcome{Stake: res.Stake, Win: res.Win, Jackpot: res.Jackpot})
	d.rounds.Add(rounds.FromResult(uid, greq, res))
	if d.board != nil {
		d.board.Record(uid, tournament.Type(res.Logic), res.Win)
	}
	if res.Jackpot > 0 {
		d.log.Info("jackpot hit", "uid", uid, "gid", res.GameID, "paid", res.Jackpot, "round", roundID)
		if d.pub != nil {
			if jp, err := d.rt.Jackpot(res.GameID); err == nil {
				d.pub.Broadcast(PushJackpot, JackpotUpdate{GID: res.GameID, Value: jp.Value(), Winner: uid, Paid: res.Jackpot})
			}
		}
	}
	return res, nil
}

// Verification 回放結果與紀錄的比對
type Verification struct {
	Round    rounds.Round    `json:"round"`
	Replayed *dto.PlayResult `json:"replayed"`
	Match    bool            `json:"match"`
}

// Verify 以紀錄中的起始快照回放一局。盤面與一般賠付（不含彩金）必須一致。
// admin 為 true 時可驗證任何玩家的局。
func (d *Dealer) Verify(uid, roundID string, admin bool) (*Verification, error) {
	r, err := d.rounds.Get(roundID)
	if err != nil {
		return nil, err
	}
	if !admin && r.UserID != uid {
		return nil, ErrNotOwner
	}
	if r.Request == nil {
		return nil, errs.NewWarn("round has no request recorded")
	}
	res, err := d.rt.Royale().Replay(&dto.PlayRequest{
		GameID:    r.GID,
		Bet:       r.Request.Bet,
		Bets:      r.Request.Bets,
		StartB64U: r.CoreSnapBefore,
	})
	if err != nil {
		return nil, err
	}
	match := res.State.AfterB64U == r.CoreSnapAfter &&
		res.Stake == r.Bet &&
		res.Win-res.Jackpot == r.Win-r.Jackpot
	return &Verification{Round: r, Replayed: res, Match: match}, nil
}
