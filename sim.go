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

package royale

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/recorder"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
	"github.com/zintix-labs/royale/stats"
	"golang.org/x/sync/errgroup"
)

const capPrepare int = 100

// Simulator 用於模擬遊戲行為，可建立多台機台並平行紀錄統計。
//
// 模擬用的機台共用一份隔離的 Shared，彩金池不影響線上。
type Simulator struct {
	GameName  string                   // 遊戲名稱
	GameId    rules.GID                // 遊戲 ID
	gs        *rules.GameSetting       // 方便重用建立 recorder
	logic     *games.LogicRegistry     // 邏輯註冊表
	cf        core.PRNGFactory         // 亂數生成器
	shared    *games.Shared            // 模擬專用的共享狀態
	initSeed  int64                    // 初始下的種子
	seedmaker *seedMaker               // 種子生成器
	mBuf      []*Machine               // 併發執行機台實例
	rBuf      []*recorder.SpinRecorder // 併發遊戲紀錄員
	sBuf      []*stats.StatReport      // 併發統計結果報表(僅Players需要)
}

func newSimulator(gs *rules.GameSetting, reg *games.LogicRegistry, cf core.PRNGFactory) (*Simulator, error) {
	seed, err := core.CryptoSeed()
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, reg, cf, seed)
}

func newSimulatorWithSeed(gs *rules.GameSetting, reg *games.LogicRegistry, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		logic:     reg,
		cf:        cf,
		shared:    games.NewShared(),
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.SpinRecorder, 0, capPrepare),
		sBuf:      make([]*stats.StatReport, 0, capPrepare),
	}
	m, err := newMachineWithSeed(gs, reg, cf, s.shared, s.initSeed)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

// Shared 模擬專用的共享狀態（可取得模擬中的彩金池）。
func (s *Simulator) Shared() *games.Shared { return s.shared }

// Sim 單線模擬器：以一台機台連續跑指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(req *games.Request, round int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if round < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	r, err := s.newRecorder(req, 0)
	if err != nil {
		return nil, 0, err
	}
	m := s.mBuf[0]

	bar := newBar(round, showpb)
	for i := 0; i < round; i++ {
		out, err := m.PlayInternal(req)
		if err != nil {
			bar.Finish()
			return nil, 0, err
		}
		r.Record(out)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	return r.Done(), used, nil
}

// SimMP 平行執行多個機台，總計 rounds*mp 局，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(req *games.Request, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if err := s.prepareMachines(mp); err != nil {
		return nil, 0, err
	}
	for len(s.rBuf) < mp {
		r, err := s.newRecorder(req, 0)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	bar := newBar(rounds*mp, showpb)
	var g errgroup.Group
	for i := 0; i < mp; i++ {
		m := s.mBuf[i]
		st := s.rBuf[i]
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				out, err := m.PlayInternal(req)
				if err != nil {
					return err
				}
				st.Record(out)
				bar.Increment()
			}
			return nil
		})
	}
	err := g.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, 0, err
	}

	st, err := recorder.MergeSpinRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	return st.Done(), used, nil
}

// SimPlayers 模擬多個玩家各自帶入初始籌碼的遊戲歷程，並產出機台報表與玩家報表。
func (s *Simulator) SimPlayers(mp int, players int, initBets int, req *games.Request, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	defer s.reset()
	if players < 1 || initBets < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}
	if err := s.prepareMachines(mp); err != nil {
		return nil, nil, 0, err
	}

	// 準備玩家
	for len(s.rBuf) < players {
		r, err := s.newRecorder(req, initBets)
		if err != nil {
			return nil, nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	jobs := make(chan *recorder.SpinRecorder, min(players, 2048))

	bar := newBar(players, showpb)
	var g errgroup.Group
	for w := 0; w < mp; w++ {
		m := s.mBuf[w]
		g.Go(func() error { return simPlayer(m, jobs, req, rounds, bar) })
	}
	for _, j := range s.rBuf {
		jobs <- j
	}
	close(jobs)
	err := g.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, nil, 0, err
	}

	// 機台基準報表
	record, err := recorder.MergeSpinRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	st := record.Done()

	// 玩家分析報表
	s.sBuf = s.sBuf[:0]
	for _, r := range s.rBuf {
		s.sBuf = append(s.sBuf, r.Done())
	}
	est := stats.EstimatorPlayerExp(s.sBuf)
	return st, est, used, nil
}

// simPlayer 出錯時仍把 jobs 消化完，避免送件端阻塞。
func simPlayer(m *Machine, jobs chan *recorder.SpinRecorder, req *games.Request, rounds int, bar *pb.ProgressBar) error {
	var first error
	for j := range jobs {
		if first != nil {
			continue
		}
		for range rounds {
			out, err := m.PlayInternal(req)
			if err != nil {
				first = err
				break
			}
			if j.RecordWithPlayer(out) {
				break
			}
		}
		bar.Increment()
	}
	return first
}

func (s *Simulator) prepareMachines(n int) error {
	for len(s.mBuf) < n {
		m, err := newMachineWithSeed(s.gs, s.logic, s.cf, s.shared, s.seedmaker.next())
		if err != nil {
			return err
		}
		s.mBuf = append(s.mBuf, m)
	}
	return nil
}

// newRecorder 以第一台機台報價，押注不合法時在開跑前就失敗。
func (s *Simulator) newRecorder(req *games.Request, initBets int) (*recorder.SpinRecorder, error) {
	if req == nil {
		return nil, errs.NewWarn("nil game request")
	}
	stake, err := s.mBuf[0].Quote(req)
	if err != nil {
		return nil, err
	}
	return recorder.NewSpinRecorder(s.gs, stake, initBets)
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.sBuf = s.sBuf[:0]
}

// newBar showpb 為 false 時仍計時，但不輸出
func newBar(total int, showpb bool) *pb.ProgressBar {
	bar := pb.New(total)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	return bar.Start()
}
