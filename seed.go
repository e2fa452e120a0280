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

package royale

import "sync/atomic"

const mask63 = uint64(1<<63) - 1

// seedMaker 由一個起始種子派生各機台種子，同一起點的序列可重現。
// 可被多個 goroutine 同時呼叫。
type seedMaker struct {
	state atomic.Uint64
}

func newSeedMaker(seed int64) *seedMaker {
	s := new(seedMaker)
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以 mod 2^63 全週期 LCG 推進，輸出前打散；結果一定非負。
func (s *seedMaker) next() int64 {
	for {
		cur := s.state.Load()
		nxt := (cur*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(cur, nxt) {
			return int64(scramble(nxt))
		}
	}
}

// scramble 可逆的 xor-shift 與乘奇數，保持在 63 位元內
func scramble(x uint64) uint64 {
	for _, step := range [...]struct {
		shift uint
		mul   uint64
	}{{30, 0xBF58476D1CE4E5B9}, {27, 0x94D049BB133111EB}} {
		x ^= x >> step.shift
		x = (x * step.mul) & mask63
	}
	return (x ^ x>>31) & mask63
}
