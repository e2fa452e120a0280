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

package settings

import (
	"sync"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	if err := Default().Valid(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	d := Default()
	if d.MaxDailyDeposit != 1000000 || d.MinWithdraw != 1000 || d.MaxWithdraw != 500000 {
		t.Fatalf("default limits = %d/%d/%d", d.MaxDailyDeposit, d.MinWithdraw, d.MaxWithdraw)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	s := NewStore(Default())
	bad := Default()
	bad.MinWithdraw = bad.MaxWithdraw + 1
	got, err := s.Update(bad)
	if err == nil {
		t.Fatalf("expected error for min > max")
	}
	if got != Default() || s.Get() != Default() {
		t.Fatalf("store changed on invalid update: %+v", s.Get())
	}

	next := Default()
	next.MaintenanceMode = true
	if got, err = s.Update(next); err != nil || !got.MaintenanceMode || !s.Get().MaintenanceMode {
		t.Fatalf("update = %+v, %v", got, err)
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore(Default())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			next := Default()
			next.BonusesEnabled = i%2 == 0
			_, _ = s.Update(next)
		}()
		go func() {
			defer wg.Done()
			if err := s.Get().Valid(); err != nil {
				t.Errorf("read torn settings: %v", err)
			}
		}()
	}
	wg.Wait()
}
