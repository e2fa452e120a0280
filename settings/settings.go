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

// Package settings 保存管理後台可即時調整的系統設定。
package settings

import (
	"sync"

	"github.com/zintix-labs/royale/errs"
)

// System 系統設定；金額皆為整數貨幣單位。
type System struct {
	MaintenanceMode     bool  `json:"maintenanceMode"     yaml:"maintenance_mode"`
	RegistrationEnabled bool  `json:"registrationEnabled" yaml:"registration_enabled"`
	BonusesEnabled      bool  `json:"bonusesEnabled"      yaml:"bonuses_enabled"`
	VIPProgramEnabled   bool  `json:"vipProgramEnabled"   yaml:"vip_program_enabled"`
	MaxDailyDeposit     int64 `json:"maxDailyDeposit"     yaml:"max_daily_deposit"`
	MinWithdraw         int64 `json:"minWithdraw"         yaml:"min_withdraw"`
	MaxWithdraw         int64 `json:"maxWithdraw"         yaml:"max_withdraw"`
}

// Default 後台預設值
func Default() System {
	return System{
		MaintenanceMode:     false,
		RegistrationEnabled: true,
		BonusesEnabled:      true,
		VIPProgramEnabled:   true,
		MaxDailyDeposit:     1000000,
		MinWithdraw:         1000,
		MaxWithdraw:         500000,
	}
}

func (s System) Valid() error {
	if s.MaxDailyDeposit <= 0 {
		return errs.NewWarn("maxDailyDeposit must > 0")
	}
	if s.MinWithdraw <= 0 || s.MaxWithdraw <= 0 {
		return errs.NewWarn("withdraw limits must > 0")
	}
	if s.MinWithdraw > s.MaxWithdraw {
		return errs.NewWarn("minWithdraw must <= maxWithdraw")
	}
	return nil
}

// Store 可併發讀寫的設定。
type Store struct {
	mu  sync.RWMutex
	cur System
}

func NewStore(init System) *Store {
	return &Store{cur: init}
}

func (s *Store) Get() System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update 驗證後整份替換，回傳新值。
func (s *Store) Update(next System) (System, error) {
	if err := next.Valid(); err != nil {
		return s.Get(), err
	}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return next, nil
}
