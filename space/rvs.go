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

package space

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
)

// CandidateBudget 不可行偵測門檻：候選累積超過這個數、且一個合法點都還沒
// 找到時，RVS 以 KindRuntime 失敗。
//
// 這是啟發式而非可行性證明：接受率極低但非零的約束集終究會成功
// （一旦收到第一個合法點，就不再有上限）——這表示第一個幸運命中之後，
// 湊滿剩餘配額仍可能跑非常久。這個行為是已知缺口，刻意保留：
// 改掉它會改變可觀察行為。
var CandidateBudget = 10_000

// RVS 抽取 n 個全部滿足約束集的點（row-major，長度精確為 n）。
//
// c 為共享亂數核心；傳 nil 會以加密隨機 seed 建一顆（不可重現）。
// 可重現性：同一顆 seed、同一份約束集，必定重現一模一樣的點序列；
// 抽取次序是「每輪逐維抽滿 n 個再轉置」，對序列重現有意義，不可改動。
//
// 演算法（拒絕取樣）：
//  1. 逐維生成寬度 n 的欄：有 Single 的維度直接填釘住的值，
//     其他維度用自己的產生器從共享 Core 抽。
//  2. 轉置成 n 個候選點，逐點 ValidateSample，合法的按生成順序累積。
//  3. 候選計數累加 n；超過 CandidateBudget 且累積仍為空 → KindRuntime。
//  4. 累積夠 n 個即回傳前 n 個；最後一輪多出的合法點直接丟棄，
//     不會帶到下一次呼叫。
//
// 每輪都以全寬 n 重新生成（而不是一次補一個），用一些浪費的抽取換
// 向量化生成效率，與欄向量的轉置語意。
func (cs *Constraints) RVS(n int, c *core.Core) ([][]Value, error) {
	rows, _, err := cs.RVSStats(n, c)
	return rows, err
}

// RVSStats 與 RVS 相同，另外回傳為了湊滿 n 個點總共生成的候選數，
// 供接受率統計使用。
func (cs *Constraints) RVSStats(n int, c *core.Core) ([][]Value, int, error) {
	if n <= 0 {
		return nil, 0, nil
	}
	if c == nil {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, 0, errs.Wrap(err, "derive crypto seed")
		}
		c = core.NewSeeded(seed.Int64())
	}

	nd := cs.space.NDims()
	rows := make([][]Value, 0, n)
	cols := make([][]Value, nd)
	candidates := 0

	for len(rows) < n {
		for d, dim := range cs.space.dims {
			if s := cs.single[d]; s != nil {
				col := make([]Value, n)
				for i := range col {
					col[i] = s.Value()
				}
				cols[d] = col
				continue
			}
			cols[d] = dim.RVS(n, c)
		}

		for i := 0; i < n; i++ {
			point := make([]Value, nd)
			for d := 0; d < nd; d++ {
				point[d] = cols[d][i]
			}
			if cs.ValidateSample(point) {
				rows = append(rows, point)
			}
		}

		candidates += n
		if candidates > CandidateBudget && len(rows) == 0 {
			return nil, candidates, errs.Runtimef("could not find valid samples within %d candidates for %s", CandidateBudget, cs)
		}
	}

	return rows[:n], candidates, nil
}

// RVSSeed 以指定 seed 建立亂數核心後呼叫 RVS，是可重現取樣的便利入口。
func (cs *Constraints) RVSSeed(n int, seed int64) ([][]Value, error) {
	return cs.RVS(n, core.NewSeeded(seed))
}
