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

// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (probweights.go) 負責把「浮點機率權重」轉成 AliasTable 可用的整數權重。

package sampler

import (
	"math"

	"github.com/zintix-labs/paramlab/errs"
)

// probScale 浮點權重轉整數的放大倍率。
// 1e6 對先驗機率已綽綽有餘（解析度 1e-6），同時遠離 isSafeMultiply 的溢位邊界。
const probScale = 1_000_000

// BuildAliasTableProb 以浮點權重建立 AliasTable。
//
// 與 BuildAliasTable 不同，這是「面向設定檔」的入口：
//   - 權重不需正規化（內部只看相對比例）。
//   - 非法輸入（負值、NaN/Inf、全零、空表）回傳 KindValue 錯誤而不是 panic，
//     因為權重來自使用者宣告，錯了屬於輸入問題。
//
// 精度說明：每個權重按 max(weights) 正規化後乘上 probScale 取整，
// 相對誤差上界為 1/probScale，對先驗抽樣而言可以忽略。
func BuildAliasTableProb[F Floaters](weights []F) (*AliasTable, error) {
	if len(weights) == 0 {
		return nil, errs.Valuef("alias weights must not be empty")
	}

	maxW := float64(0)
	for _, w := range weights {
		f := float64(w)
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errs.Valuef("alias weight must be finite and non-negative, got %v", f)
		}
		if f > maxW {
			maxW = f
		}
	}
	if maxW == 0 {
		return nil, errs.Valuef("alias weights must not be all zero")
	}

	scaled := make([]int, len(weights))
	for i, w := range weights {
		scaled[i] = int(math.Round(float64(w) / maxW * probScale))
	}

	return BuildAliasTable(scaled), nil
}
