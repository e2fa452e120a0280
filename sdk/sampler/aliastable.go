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

package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/royale/sdk/core"
)

// AliasTable 是整數版 Vose Alias Method：建表 O(N)，抽樣 O(1)（固定 2 次 IntN）。
//
// 老虎機每一格都獨立抽一次圖標，因此抽樣成本必須固定；
// 全整數 scaling 讓企劃寫的權重（例如 60/50/40/.../1）與實際機率嚴格一致，不受浮點誤差影響。
//
//   - Prob[i] = scaled 後留給自己的機率（分母為 Total）
//   - Aliases[i] = 機率不足時補位的索引
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據非負整數權重建表，權重不需正規化。
// 任何負權重、全部為零或乘法溢位都會 panic（屬於設定錯誤，應在載入設定時就被 rules 擋下）。
func BuildAliasTable[T Integers](weights []T) *AliasTable {
	n := len(weights)
	if n == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}
	}

	total := uint64(0)
	for _, w := range weights {
		if w < 0 {
			panic("AliasTable: negative weight encountered")
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			panic("AliasTable: total weight overflow int range")
		}
		total += uint64(w)
	}
	if total == 0 {
		panic("AliasTable: all weights are zero")
	}
	if !isSafeMultiply(int(total), n) {
		panic("AliasTable: weights are too large, causing overflow")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		prob[i] = int(w) * n
		if prob[i] < int(total) {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		// sum(prob) = total * n 維持不變
		prob[l] = prob[l] + prob[s] - int(total)

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位（浮點版會因誤差殘留，整數版只會是剛好滿格）指向自己
	for _, i := range append(small, large...) {
		prob[i] = int(total)
		aliases[i] = i
	}

	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: int(total)}
}

func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && lo <= math.MaxInt64
}

// Pick 從 AliasTable 中抽取一個索引，若表為空則回傳 -1。
// 先均勻選槽位，再以 IntN(Total) < Prob[idx] 決定留下自己或取別名。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}

// Weight 回傳第 i 項在 Total 中的實際份額（建表前的原始權重），測試與報表使用。
func (at *AliasTable) Weight(i int) int {
	if i < 0 || i >= at.Size {
		return 0
	}
	// 還原：每個槽位把 Prob[j] 留給 j，Total-Prob[j] 給 Aliases[j]
	w := 0
	for j := 0; j < at.Size; j++ {
		if j == i {
			w += at.Prob[j]
		}
		if at.Aliases[j] == i && at.Aliases[j] != j {
			w += at.Total - at.Prob[j]
		}
	}
	return w / at.Size
}
