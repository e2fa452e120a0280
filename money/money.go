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

// Package money 金額顯示。所有金額都是整數貨幣單位。
package money

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Unit 平台使用的幣別
var Unit = currency.RUB

var printer = message.NewPrinter(language.English)

// Format 12500 -> "12,500 RUB"
func Format(v int64) string {
	return printer.Sprintf("%d %s", v, Unit)
}

// Signed 帶正負號，用於帳本顯示
func Signed(v int64) string {
	if v > 0 {
		return "+" + Format(v)
	}
	return Format(v)
}
