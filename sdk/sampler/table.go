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
	"github.com/zintix-labs/royale/sdk/core"
)

// Table 把任意元素與其權重綁在一起，抽樣直接回傳元素本身。
type Table[T any] struct {
	items []T
	at    *AliasTable
}

// NewTable 以 weight 函數取出每個元素的權重後建表。
func NewTable[T any, W Integers](items []T, weight func(T) W) *Table[T] {
	ws := make([]W, len(items))
	for i, it := range items {
		ws[i] = weight(it)
	}
	return &Table[T]{items: append([]T(nil), items...), at: BuildAliasTable(ws)}
}

// Pick 抽一個元素；空表回傳零值與 false。
func (t *Table[T]) Pick(c *core.Core) (T, bool) {
	idx := t.at.Pick(c)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return t.items[idx], true
}

// PickIndex 抽一個索引，空表回傳 -1。
func (t *Table[T]) PickIndex(c *core.Core) int {
	return t.at.Pick(c)
}

func (t *Table[T]) Len() int {
	return len(t.items)
}

// Prob 回傳第 i 項的理論機率。
func (t *Table[T]) Prob(i int) float64 {
	if t.at.Total == 0 {
		return 0
	}
	return float64(t.at.Weight(i)) / float64(t.at.Total)
}
