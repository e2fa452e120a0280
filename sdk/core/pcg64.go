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

// PCG64 generator (PCG by Melissa O'Neill) on top of math/rand/v2.
// The bounded generation in boundedUint64 follows the Go standard library
// (math/rand/v2, BSD 3-Clause License).

package core

import (
	"encoding/base64"
	"math/bits"
	r2 "math/rand/v2"
)

// pcg64 是預設 PRNG，狀態 128 bits，可 MarshalBinary 作為快照。
type pcg64 struct {
	src *r2.PCG
}

// newPCG64WithSeed 以 splitmix64 將 63-bit seed 展開成 PCG 的兩個 64-bit 狀態。
func newPCG64WithSeed(seed int64) *pcg64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	return &pcg64{src: r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))}
}

func (r *pcg64) Uint64() uint64 {
	return r.src.Uint64()
}

func (r *pcg64) UintN(n uint) uint {
	if n == 0 {
		return 0
	}
	return uint(r.boundedUint64(uint64(n)))
}

func (r *pcg64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(r.boundedUint64(uint64(n)))
}

// Float64 取 53 bits 作為 [0,1) 的尾數。
func (r *pcg64) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

func (r *pcg64) Snapshot() ([]byte, error) {
	return r.src.MarshalBinary()
}

func (r *pcg64) Restore(data []byte) error {
	return r.src.UnmarshalBinary(data)
}

// boundedUint64 回傳 [0,n) 的無偏亂數（乘法高位 + 拒絕採樣）。
func (r *pcg64) boundedUint64(n uint64) uint64 {
	if n&(n-1) == 0 {
		return r.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(r.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(r.Uint64(), n)
		}
	}
	return hi
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// EncodeSnap / DecodeSnap 把快照轉成 URL-safe base64（Round 審計紀錄與回放使用）。
func EncodeSnap(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeSnap(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
