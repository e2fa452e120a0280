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

package stats

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// EstimatorPlayers 以多位模擬玩家的報告估計「一位真實玩家坐下來玩一場」的體驗。
// 所有比例皆附 DefaultConfidence 的 Clopper-Pearson 區間。
type EstimatorPlayers struct {
	Players     int
	RtpStat     RtpStat
	EventStat   EventStat
	SessionStat SessionStat
}

type RtpStat struct {
	ExpMedian PointStat
	ExpPerc   ExpPerc // 第 q 分位玩家的 RTP
	RtpPerc   RtpPerc // RTP 不超過門檻的玩家比例
}

type ExpPerc struct {
	ExpP10 PointStat
	ExpP33 PointStat
	ExpP67 PointStat
	ExpP90 PointStat
}

type RtpPerc struct {
	Rtp30  PointStat
	Rtp50  PointStat
	Rtp70  PointStat
	Rtp100 PointStat
}

// PointStat 點估計與其區間
type PointStat struct {
	Hat float64
	CI  CI
}

type EventStat struct {
	Jackpot EventCount // 每位玩家中彩金的次數
	Bucket  BucketEvent
}

// EventCount 事件在一場中發生 0/1/2/3+ 次的玩家比例
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

type BucketEvent struct {
	BucketLable []string
	BucketCount []EventCount
}

type SessionStat struct {
	Bust    PointStat // 餘額不足最低下注
	Cashout PointStat // 達到離場目標
	Alive   PointStat // 轉完仍有餘額
	Ahead   PointStat // 曾經高於起始餘額
}

// EstimatorPlayerExp sts 為每位玩家一份報告（SimPlayers 的輸出）。
func EstimatorPlayerExp(sts []*StatReport) *EstimatorPlayers {
	n := len(sts)
	out := &EstimatorPlayers{Players: n}
	if n == 0 {
		return out
	}

	rtp := make([]float64, n)
	for i, s := range sts {
		rtp[i] = s.Rtp()
	}
	slices.Sort(rtp)
	at := func(q float64) PointStat {
		lo, hi := quantileCI(rtp, q, DefaultConfidence)
		return PointStat{Hat: quantilePoint(rtp, q), CI: CI{Lo: lo, Hi: hi}}
	}
	under := func(x float64) PointStat {
		k, _ := slices.BinarySearch(rtp, x)
		for k < n && rtp[k] <= x {
			k++
		}
		return share(k, n)
	}
	out.RtpStat = RtpStat{
		ExpMedian: at(0.5),
		ExpPerc:   ExpPerc{ExpP10: at(0.10), ExpP33: at(1.0 / 3), ExpP67: at(2.0 / 3), ExpP90: at(0.90)},
		RtpPerc:   RtpPerc{Rtp30: under(0.30), Rtp50: under(0.50), Rtp70: under(0.70), Rtp100: under(1.00)},
	}

	out.EventStat.Jackpot = countEvent(sts, func(s *StatReport) int { return s.Summary.JackpotHits })
	labels := WinBucketStr()
	out.EventStat.Bucket = BucketEvent{BucketLable: labels, BucketCount: make([]EventCount, len(labels))}
	for bi := range labels {
		out.EventStat.Bucket.BucketCount[bi] = countEvent(sts, func(s *StatReport) int {
			if s.Dist == nil || bi >= len(s.Dist.WinCollect) {
				return 0
			}
			return s.Dist.WinCollect[bi]
		})
	}

	var bust, cash, alive, ahead int
	for _, s := range sts {
		p := s.Player
		if p == nil {
			continue
		}
		if p.Bust {
			bust++
		}
		if p.Cashout {
			cash++
		}
		if p.Alive {
			alive++
		}
		if p.MaxBalance > p.InitBalance {
			ahead++
		}
	}
	out.SessionStat = SessionStat{
		Bust:    share(bust, n),
		Cashout: share(cash, n),
		Alive:   share(alive, n),
		Ahead:   share(ahead, n),
	}
	return out
}

func countEvent(sts []*StatReport, times func(*StatReport) int) EventCount {
	var c [4]int
	for _, s := range sts {
		c[min(max(times(s), 0), 3)]++
	}
	n := len(sts)
	return EventCount{Zero: share(c[0], n), One: share(c[1], n), Two: share(c[2], n), More: share(c[3], n)}
}

func share(k, n int) PointStat {
	hat, ci := proportionCICP(k, n, DefaultConfidence)
	return PointStat{Hat: hat, CI: ci}
}

// proportionCICP 二項比例 k/n 的 Clopper-Pearson 區間
func proportionCICP(k, n int, confidence float64) (float64, CI) {
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 1}
	}
	alpha := 1 - confidence
	ci := CI{Lo: 0, Hi: 1}
	if k > 0 {
		ci.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		ci.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return float64(k) / float64(n), ci
}

// quantileCI sorted 需已排序；以順序統計量的秩反推第 q 分位的上下界。
func quantileCI(sorted []float64, q, confidence float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return sorted[0], sorted[0]
	}
	alpha := 1 - confidence
	k := min(max(int(q*float64(n)), 1), n-1)
	pLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	pHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	li := min(max(int(pLo*float64(n)), 0), n-1)
	ui := min(max(int(pHi*float64(n))-1, 0), n-1)
	return sorted[li], sorted[ui]
}

// quantilePoint 最近秩法，sorted 需已排序。
func quantilePoint(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	return sorted[min(max(int(q*float64(n)), 0), n-1)]
}

// Table 以與 StatReport 相同的表格格式輸出
func (est *EstimatorPlayers) Table() string {
	r := est.RtpStat
	keys := []string{"Players", "Median RTP", "P10 RTP", "P33 RTP", "P67 RTP", "P90 RTP",
		"RTP <= 30%", "RTP <= 50%", "RTP <= 70%", "RTP <= 100%"}
	msg := map[string]string{
		"Players":     fmt.Sprintf("%d", est.Players),
		"Median RTP":  fmtPoint(r.ExpMedian),
		"P10 RTP":     fmtPoint(r.ExpPerc.ExpP10),
		"P33 RTP":     fmtPoint(r.ExpPerc.ExpP33),
		"P67 RTP":     fmtPoint(r.ExpPerc.ExpP67),
		"P90 RTP":     fmtPoint(r.ExpPerc.ExpP90),
		"RTP <= 30%":  fmtPoint(r.RtpPerc.Rtp30),
		"RTP <= 50%":  fmtPoint(r.RtpPerc.Rtp50),
		"RTP <= 70%":  fmtPoint(r.RtpPerc.Rtp70),
		"RTP <= 100%": fmtPoint(r.RtpPerc.Rtp100),
	}
	var sb strings.Builder
	sb.WriteString(fmtTable("Player Experience", keys, msg))

	keys = []string{"Jackpot"}
	msg = map[string]string{"Jackpot": fmtEvent(est.EventStat.Jackpot)}
	for i, label := range est.EventStat.Bucket.BucketLable {
		keys = append(keys, label)
		msg[label] = fmtEvent(est.EventStat.Bucket.BucketCount[i])
	}
	sb.WriteString(fmtTable("Events per Player (0x | 1x | 2x | 3+x)", keys, msg))

	s := est.SessionStat
	keys = []string{"Bust", "Cashout", "Alive", "Ever Ahead"}
	msg = map[string]string{
		"Bust":       fmtPoint(s.Bust),
		"Cashout":    fmtPoint(s.Cashout),
		"Alive":      fmtPoint(s.Alive),
		"Ever Ahead": fmtPoint(s.Ahead),
	}
	sb.WriteString(fmtTable("Session Outcome", keys, msg))
	return sb.String()
}

func (est *EstimatorPlayers) Out() {
	fmt.Print(est.Table())
}

func pct(x float64) string { return fmt.Sprintf("%.2f%%", x*100) }

func fmtPoint(p PointStat) string {
	return fmt.Sprintf("%s [%s, %s]", pct(p.Hat), pct(p.CI.Lo), pct(p.CI.Hi))
}

func fmtEvent(ec EventCount) string {
	return strings.Join([]string{pct(ec.Zero.Hat), pct(ec.One.Hat), pct(ec.Two.Hat), pct(ec.More.Hat)}, " | ")
}
