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

package tournament

import (
	"context"
	"sync"
	"time"
)

const defaultCheckEvery = 30 * time.Second

// Scheduler 定期結算已結束的錦標賽。實作 app.Component。
type Scheduler struct {
	board *Board
	every time.Duration

	stop chan struct{}
	once sync.Once
	done chan struct{}
}

func NewScheduler(b *Board, every time.Duration) *Scheduler {
	if every <= 0 {
		every = defaultCheckEvery
	}
	return &Scheduler{board: b, every: every, stop: make(chan struct{}), done: make(chan struct{})}
}

func (s *Scheduler) Run() error {
	defer close(s.done)
	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return nil
		case now := <-t.C:
			s.board.Finish(now)
		}
	}
}

func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
