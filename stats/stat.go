package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/royale/rules"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// DefaultConfidence RTP 信賴區間的預設信心水準
const DefaultConfidence = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 遊戲統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	GameName    string         `json:"GameName"`
	GameId      rules.GID      `json:"GameId"`
	Logic       rules.LogicKey `json:"Logic"`
	Bet         int64          `json:"Bet"`
	TotalBet    int64          `json:"TotalBet"`
	TotalWin    int64          `json:"TotalWin"`
	JackpotWin  int64          `json:"JackpotWin"`
	JackpotHits int            `json:"JackpotHits"`
	MaxWin      int64          `json:"MaxWin"`
	RTP         float64        `json:"RTP"`
	RtpCI       CI             `json:"RtpCI"`
	Std         float64        `json:"Std"`
	Cv          float64        `json:"Cv"`
	NoWinRounds int            `json:"NoWinRounds"`
	HitRate     float64        `json:"HitRate"`
	Rounds      int            `json:"Rounds"`
}

// MultReport 贏倍（win / stake）累積量，Std 由此計算，避免大獎平方溢位。
type MultReport struct {
	WinMult      float64 `json:"WinMult"`
	WinMultSqSum float64 `json:"WinMultSqSum"`
}

// DistReport 贏倍區間落點統計
type DistReport struct {
	WinBucket  []string  `json:"WinBucket"`
	WinCollect []int     `json:"WinCollect"`
	WinDist    []float64 `json:"WinDist"`
}

// PlayerReport 玩家統計
//
// 需使用 RecordWithPlayer 才會統計
type PlayerReport struct {
	InitBalance int64 `json:"InitBalance"`
	Balance     int64 `json:"Balance"`
	MaxBalance  int64 `json:"MaxBalance"`
	MinBalance  int64 `json:"MinBalance"`
	Bust        bool  `json:"Bust"`
	Cashout     bool  `json:"Cashout"`
	Alive       bool  `json:"Alive"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果。重複呼叫無副作用。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci(DefaultConfidence)
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if s.Summary.Rounds > 0 {
		s.Summary.HitRate = 1.0 - float64(s.Summary.NoWinRounds)/float64(s.Summary.Rounds)
	}
	if s.Dist != nil {
		rf := float64(max(s.Summary.Rounds, 1))
		s.Dist.WinDist = make([]float64, len(s.Dist.WinCollect))
		for i, c := range s.Dist.WinCollect {
			s.Dist.WinDist[i] = float64(c) / rf
		}
	}
	if s.Player != nil {
		s.Player.Alive = !(s.Player.Bust || s.Player.Cashout)
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet)
}

// Std 回傳單局贏倍的樣本標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Mult == nil {
		return 0
	}
	n := float64(s.Summary.Rounds)
	variance := (s.Mult.WinMultSqSum - s.Mult.WinMult*s.Mult.WinMult/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏倍的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳 RTP 的常態近似信賴區間。
func (s *StatReport) Ci(confidence float64) CI {
	rtp := s.Rtp()
	if s.Summary.Rounds < 2 || confidence <= 0 || confidence >= 1 {
		return CI{Lo: rtp, Hi: rtp}
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	se := s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	return CI{Lo: max(rtp-z*se, 0.0), Hi: rtp + z*se}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// Table 回傳人類可讀的摘要表格。
func (s *StatReport) Table() string {
	s.Done()
	keys, msg := s.fmtBasic()
	return fmtTable(s.Summary.GameName, keys, msg)
}

func (s *StatReport) StdOut(ut time.Duration) {
	fmt.Print(FormatDuration(ut, s.Summary.Rounds))
	fmt.Println(s.Table())
}

// ============================================================
// ** 內部方法 **
// ============================================================

// FormatDuration 輸出用時與每秒局數。
func FormatDuration(d time.Duration, rounds int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rounds) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rounds/sec\n", sec, rps)
	}
	ss := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rounds/sec\n", m, ss, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rounds/sec\n", h, m, ss, rps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", s.Summary.GameName),
		"Game ID":      fmt.Sprintf("%d", s.Summary.GameId),
		"Logic":        string(s.Summary.Logic),
		"Bet":          p.Sprintf("%d", s.Summary.Bet),
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%d", s.Summary.TotalBet),
		"Total Win":    p.Sprintf("%d", s.Summary.TotalWin),
		"Max Win":      p.Sprintf("%d", s.Summary.MaxWin),
		"Jackpot Hits": p.Sprintf("%d", s.Summary.JackpotHits),
		"Jackpot Win":  p.Sprintf("%d", s.Summary.JackpotWin),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Logic", "Bet", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Win", "Max Win", "Jackpot Hits", "Jackpot Win", "Hit Rate", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
