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
	"strconv"
	"strings"
	"time"

	"github.com/ShiraazMoollatjie/goluhn"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/royale/errs"
)

// Method 付款方式；金額上下限為單筆。
type Method struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	FeePct decimal.Decimal `json:"fee_pct"`
	Min    int64           `json:"min_amount"`
	Max    int64           `json:"max_amount"`
	Card   bool            `json:"card"`
}

var methods = []Method{
	{ID: "visa", Name: "Visa/MasterCard", FeePct: decimal.Zero, Min: 1000, Max: 500000, Card: true},
	{ID: "mir", Name: "MIR", FeePct: decimal.Zero, Min: 1000, Max: 300000, Card: true},
	{ID: "sbp", Name: "SBP", FeePct: decimal.Zero, Min: 100, Max: 200000},
	{ID: "qiwi", Name: "QIWI", FeePct: decimal.NewFromInt(2), Min: 500, Max: 100000},
	{ID: "yandex", Name: "YooMoney", FeePct: decimal.NewFromInt(1), Min: 100, Max: 150000},
	{ID: "crypto", Name: "Crypto", FeePct: decimal.Zero, Min: 5000, Max: 1000000},
}

// QuickAmounts 前端快速選擇的金額
var QuickAmounts = []int64{1000, 5000, 10000, 25000, 50000, 100000}

func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

func Lookup(id string) (Method, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

// Fee amount × FeePct / 100，四捨五入到整數單位。
func (m Method) Fee(amount int64) int64 {
	if m.FeePct.IsZero() || amount <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(m.FeePct).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (m Method) inLimits(amount int64) error {
	if amount < m.Min || amount > m.Max {
		return errs.Warnf("%s amount must be between %d and %d", m.ID, m.Min, m.Max)
	}
	return nil
}

// Card 卡片資料，只做格式驗證，不保存。
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"` // MM/YY
	CVV    string `json:"cvv"`
	Holder string `json:"holder"`
}

// Valid 卡號通過 Luhn、有效期限未過（含當月）、CVV 三碼、持卡人非空。
func (c *Card) Valid(now time.Time) error {
	if c == nil {
		return errs.NewWarn("card details required")
	}
	num := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, c.Number)
	if len(num) < 13 || len(num) > 19 || !digits(num) {
		return errs.NewWarn("invalid card number")
	}
	if err := goluhn.Validate(num); err != nil {
		return errs.NewWarn("invalid card number")
	}
	exp, err := parseExpiry(c.Expiry)
	if err != nil {
		return err
	}
	if !now.Before(exp) {
		return errs.NewWarn("card expired")
	}
	if len(c.CVV) != 3 || !digits(c.CVV) {
		return errs.NewWarn("invalid cvv")
	}
	if strings.TrimSpace(c.Holder) == "" {
		return errs.NewWarn("card holder required")
	}
	return nil
}

// Masked 只留末四碼
func (c *Card) Masked() string {
	if c == nil {
		return ""
	}
	num := strings.ReplaceAll(c.Number, " ", "")
	if len(num) < 4 {
		return ""
	}
	return "**** " + num[len(num)-4:]
}

// parseExpiry 回傳有效期限之後的第一個瞬間（次月一日 UTC）。
func parseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '/' || !digits(s[:2]) || !digits(s[3:]) {
		return time.Time{}, errs.NewWarn("expiry must be MM/YY")
	}
	mm, _ := strconv.Atoi(s[:2])
	yy, _ := strconv.Atoi(s[3:])
	if mm < 1 || mm > 12 {
		return time.Time{}, errs.NewWarn("invalid expiry month")
	}
	return time.Date(2000+yy, time.Month(mm)+1, 1, 0, 0, 0, 0, time.UTC), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
