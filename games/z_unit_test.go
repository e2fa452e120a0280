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

package games

import (
	"testing"

	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
)

type nopEngine struct{}

func (nopEngine) Stake(req *Request) (int64, error)   { return req.Bet, nil }
func (nopEngine) Play(req *Request) (*Outcome, error) { return &Outcome{Stake: req.Bet}, nil }

func nopBuilder(*Env) (Engine, error) { return nopEngine{}, nil }

func TestRegistry(t *testing.T) {
	r := NewLogicRegistry()
	if err := r.Register("nop", nopBuilder); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("nop", nopBuilder); err == nil {
		t.Fatalf("duplicate should fail")
	}
	if !r.IsExist("nop") || r.IsExist("x") {
		t.Fatalf("IsExist wrong")
	}
	env := &Env{Setting: &rules.GameSetting{GameName: "g", LogicKey: "nop"}, Core: core.New(core.Default().New(1))}
	if _, err := r.Build(env); err != nil {
		t.Fatalf("build: %v", err)
	}
	if env.Shared == nil {
		t.Fatalf("build should provide shared state")
	}
	env.Setting.LogicKey = "missing"
	if _, err := r.Build(env); err == nil {
		t.Fatalf("missing logic should fail")
	}
}

func TestMergeRegistry(t *testing.T) {
	a, b := NewLogicRegistry(), NewLogicRegistry()
	_ = a.Register("a", nopBuilder)
	_ = b.Register("b", nopBuilder)
	m, err := MergeLogicRegistry(a, nil, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(m.Keys()) != 2 {
		t.Fatalf("expected 2 keys")
	}
	_ = b.Register("a", nopBuilder)
	if _, err := MergeLogicRegistry(a, b); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestSharedEachOrdered(t *testing.T) {
	s := NewShared()
	for _, gid := range []rules.GID{3, 1, 2} {
		s.LoadOrStore(gid, "k", func() any { return int(gid) })
	}
	s.LoadOrStore(9, "other", func() any { return 0 })
	var got []rules.GID
	s.Each("k", func(gid rules.GID, v any) { got = append(got, gid) })
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("unexpected order %v", got)
	}
}
