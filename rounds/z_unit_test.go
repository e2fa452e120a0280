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

package rounds

import (
	"errors"
	"strconv"
	"testing"

	"github.com/zintix-labs/royale/dto"
	"github.com/zintix-labs/royale/games"
)

func TestLogKeepsRecent(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		pr := &dto.PlayResult{RoundID: strconv.Itoa(i), Stake: 10, Win: int64(i)}
		l.Add(FromResult("u1", &games.Request{Bet: 10}, pr))
	}
	got := l.Recent("u1", 10)
	if len(got) != 3 || got[0].RoundID != "4" || got[2].RoundID != "2" {
		t.Fatalf("unexpected recent %+v", got)
	}
	if _, err := l.Get("0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("evicted round should be gone")
	}
	if r, err := l.Get("3"); err != nil || r.Win != 3 || r.UserID != "u1" {
		t.Fatalf("get r=%+v err=%v", r, err)
	}
	if len(l.Recent("u1", 1)) != 1 || len(l.Recent("u2", 5)) != 0 {
		t.Fatalf("unexpected recent sizes")
	}
}
