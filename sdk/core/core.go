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

package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 為什麼要求同時提供 4 個方法（Uint64 / Float64 / UintN / IntN），而不是只要求 Uint64？
//   - 不同 PRNG 對 bounded 生成可能有更快/更正確的實作，把 IntN/UintN 交由
//     PRNG 自己實作，能讓每個 PRNG 用最合適的 bounded 策略。
//   - Float64 的精度（32-bit vs 53-bit）與生成方式應由 PRNG 決定。
//   - Uint64 同時讓 Core 能直接作為 gonum 的亂數來源（rand.Source），
//     distuv 的各分布可以用 Src: core 共享同一條亂數序列。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// 取樣引擎的可重現性完全建立在這個合約上：同一顆 seed 加上同一份約束設定，
	// 必須重現一模一樣的逐維抽樣序列。seed 的生命週期由呼叫端統一管理，
	// 外部未提供時由上層產生並保存 baseSeed，再以固定算法派生子 seed。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory（PCG64）。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
//
// Core 同時滿足 gonum 的 rand.Source（只需 Uint64），因此可以直接寫
// distuv.Uniform{Src: c} 讓分布抽樣與其他維度的抽取共用同一條序列。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// NewSeeded 以預設 PRNG 與指定 seed 建立 Core。
func NewSeeded(seed int64) *Core {
	return New(Default().New(seed))
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
// 熱路徑中只使用哨兵值回傳
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// ShuffleInts 使用 Fisher-Yates (亦稱 Knuth Shuffle) 演算法
// 對[]int進行「就地 (In-place)」隨機重排。
//
// 所有 N! 種排列出現的機率嚴格相等；O(N) 時間、O(1) 空間。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
