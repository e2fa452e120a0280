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

package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errBroke = NewWarn("insufficient balance")

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrLevel
	}{
		{"nil", nil, None},
		{"plain", errors.New("io"), Fatal},
		{"warn", NewWarn("bad bet"), Warn},
		{"wrapped fmt", fmt.Errorf("spin: %w", NewLimited("slow down")), Limited},
		{"wrap keeps level", Wrap(NewNotFound("no round"), "verify"), NotFound},
		{"wrap plain is fatal", Wrap(context.Canceled, "spin"), Fatal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Level(tc.err); got != tc.want {
				t.Fatalf("Level = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSentinelSurvivesWrap(t *testing.T) {
	err := Wrap(errBroke.With("uid=u1"), "place bet")
	if !errors.Is(err, errBroke) {
		t.Fatalf("errors.Is lost the sentinel: %v", err)
	}
	if errBroke.Extra != "" {
		t.Fatalf("With modified the sentinel")
	}
	if errors.Is(err, NewFatal("insufficient balance")) {
		t.Fatalf("different level must not match")
	}
	msg := err.Error()
	if !strings.Contains(msg, "place bet") || !strings.Contains(msg, "uid=u1") {
		t.Fatalf("message = %q", msg)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := WrapWithExtra(context.DeadlineExceeded, "redis incr", "key=rl:spin")
	if !errors.Is(err, context.DeadlineExceeded) || err.Extra != "key=rl:spin" {
		t.Fatalf("unexpected wrap %+v", err)
	}
	if e, ok := AsErr(fmt.Errorf("outer: %w", err)); !ok || e != err {
		t.Fatalf("AsErr = %v, %v", e, ok)
	}
}
