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
	"testing"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
)

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣結果的分佈是否符合預期權重
func checkDistribution(t *testing.T, name string, weights []int, samples []int, tolerance float64) {
	t.Helper()
	totalW := 0
	for _, w := range weights {
		totalW += w
	}
	if totalW == 0 {
		return
	}

	counts := make(map[int]int)
	for _, idx := range samples {
		counts[idx]++
	}

	totalSamples := len(samples)
	for i, w := range weights {
		if w == 0 {
			if counts[i] > 0 {
				t.Errorf("[%s] expected 0 samples for index %d (weight 0), got %d", name, i, counts[i])
			}
			continue
		}
		expectedProb := float64(w) / float64(totalW)
		actualProb := float64(counts[i]) / float64(totalSamples)
		diff := math.Abs(expectedProb - actualProb)

		if diff > tolerance {
			t.Errorf("[%s] index %d: expected prob %.3f, got %.3f (diff %.3f > tol %.3f)",
				name, i, expectedProb, actualProb, diff, tolerance)
		}
	}
}

// -----------------------------------------------------------------------------
// Tests for AliasTable
// -----------------------------------------------------------------------------

// TestAliasTableDistribution 驗證抽樣分佈貼近宣告權重
func TestAliasTableDistribution(t *testing.T) {
	c := core.NewSeeded(1)
	weights := []int{10, 30, 60}
	at := BuildAliasTable(weights)

	trials := 60000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = at.Pick(c)
	}
	checkDistribution(t, "alias", weights, samples, 0.02)
}

// TestAliasTableZeroWeightNeverPicked 驗證權重 0 的項目永不入選
func TestAliasTableZeroWeightNeverPicked(t *testing.T) {
	c := core.NewSeeded(2)
	weights := []int{5, 0, 5}
	at := BuildAliasTable(weights)
	for i := 0; i < 10000; i++ {
		if at.Pick(c) == 1 {
			t.Fatal("zero-weight index picked")
		}
	}
}

// TestAliasTableEmptyAndInvalid 驗證空表哨兵與非法權重 panic
func TestAliasTableEmptyAndInvalid(t *testing.T) {
	c := core.NewSeeded(3)
	empty := BuildAliasTable(nil)
	if got := empty.Pick(c); got != -1 {
		t.Errorf("empty table should pick -1, got %d", got)
	}

	assertPanic(t, func() { BuildAliasTable([]int{1, -1}) }, "negative weight")
	assertPanic(t, func() { BuildAliasTable([]int{0, 0}) }, "all-zero weights")
}

// -----------------------------------------------------------------------------
// Tests for BuildAliasTableProb
// -----------------------------------------------------------------------------

// TestBuildAliasTableProb 驗證浮點權重轉換後的分佈
func TestBuildAliasTableProb(t *testing.T) {
	c := core.NewSeeded(4)
	at, err := BuildAliasTableProb([]float64{0.1, 0.3, 0.6})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	trials := 60000
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		samples[i] = at.Pick(c)
	}
	checkDistribution(t, "prob", []int{10, 30, 60}, samples, 0.02)
}

// TestBuildAliasTableProbRejectsBadInput 驗證非法浮點權重回傳 KindValue
func TestBuildAliasTableProbRejectsBadInput(t *testing.T) {
	bad := [][]float64{
		nil,
		{},
		{0.5, -0.1},
		{0, 0},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, ws := range bad {
		if _, err := BuildAliasTableProb(ws); !errs.IsKind(err, errs.KindValue) {
			t.Errorf("weights %v: expected KindValue error, got %v", ws, err)
		}
	}
}
