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
	"math"
	"testing"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
)

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

func mustReal(t *testing.T, low, high float64) *Real {
	t.Helper()
	d, err := NewReal(low, high)
	if err != nil {
		t.Fatalf("NewReal(%v,%v): %v", low, high, err)
	}
	return d
}

func mustInteger(t *testing.T, low, high int) *Integer {
	t.Helper()
	d, err := NewInteger(low, high)
	if err != nil {
		t.Fatalf("NewInteger(%d,%d): %v", low, high, err)
	}
	return d
}

func mustCategorical(t *testing.T, cats ...Value) *Categorical {
	t.Helper()
	d, err := NewCategorical(cats...)
	if err != nil {
		t.Fatalf("NewCategorical(%v): %v", cats, err)
	}
	return d
}

func mustSpace(t *testing.T, dims ...Dimension) *Space {
	t.Helper()
	sp, err := NewSpace(dims...)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	return sp
}

func mustSingle(t *testing.T, dim int, v Value, dt DimType) *Single {
	t.Helper()
	c, err := NewSingle(dim, v, dt)
	if err != nil {
		t.Fatalf("NewSingle: %v", err)
	}
	return c
}

func mustInclusive(t *testing.T, dim int, bounds []Value, dt DimType) *Inclusive {
	t.Helper()
	c, err := NewInclusive(dim, bounds, dt)
	if err != nil {
		t.Fatalf("NewInclusive: %v", err)
	}
	return c
}

func mustExclusive(t *testing.T, dim int, bounds []Value, dt DimType) *Exclusive {
	t.Helper()
	c, err := NewExclusive(dim, bounds, dt)
	if err != nil {
		t.Fatalf("NewExclusive: %v", err)
	}
	return c
}

func mustConstraints(t *testing.T, sp *Space, list []Constraint) *Constraints {
	t.Helper()
	cs, err := NewConstraints(sp, list)
	if err != nil {
		t.Fatalf("NewConstraints: %v", err)
	}
	return cs
}

// wantKind 驗證錯誤存在且屬於指定分類
func wantKind(t *testing.T, err error, k errs.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error of kind %s, got nil", msg, errs.KindName(k))
	}
	if !errs.IsKind(err, k) {
		t.Fatalf("%s: expected kind %s, got %v", msg, errs.KindName(k), err)
	}
}

// -----------------------------------------------------------------------------
// Dimension construction & RVS
// -----------------------------------------------------------------------------

// TestDimensionConstructionErrors 驗證維度建構期的 KindValue 檢查
func TestDimensionConstructionErrors(t *testing.T) {
	if _, err := NewReal(2, 1); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("inverted real bounds should be KindValue, got %v", err)
	}
	if _, err := NewRealPrior(-1, 1, PriorLogUniform); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("log-uniform with low <= 0 should be KindValue, got %v", err)
	}
	if _, err := NewInteger(5, 5); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("empty integer range should be KindValue, got %v", err)
	}
	if _, err := NewCategorical(); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("empty categorical should be KindValue, got %v", err)
	}
	if _, err := NewCategorical(Str("a"), Str("a")); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("duplicated category should be KindValue, got %v", err)
	}
	if _, err := NewCategoricalWeighted([]Value{Str("a"), Str("b")}, []float64{1}); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("weight length mismatch should be KindValue, got %v", err)
	}
}

// TestDimensionRVSInDomain 驗證各維度抽出的值型別正確且落在定義域內
func TestDimensionRVSInDomain(t *testing.T) {
	c := core.NewSeeded(1)

	r := mustReal(t, -2, 3)
	for _, v := range r.RVS(500, c) {
		if v.Kind() != ValueFloat || !r.Contains(v) {
			t.Fatalf("real draw out of domain: %v", v)
		}
	}

	d := mustInteger(t, 1, 10)
	for _, v := range d.RVS(500, c) {
		if v.Kind() != ValueInt || !d.Contains(v) {
			t.Fatalf("integer draw out of domain: %v", v)
		}
	}

	cat := mustCategorical(t, Str("a"), Str("b"), Int(7))
	for _, v := range cat.RVS(500, c) {
		if !cat.Contains(v) {
			t.Fatalf("categorical draw out of domain: %v", v)
		}
	}
}

// TestLogUniformStaysInBounds 驗證 log-uniform 先驗的值仍落在 [low, high]
func TestLogUniformStaysInBounds(t *testing.T) {
	d, err := NewRealPrior(1e-4, 1e2, PriorLogUniform)
	if err != nil {
		t.Fatalf("NewRealPrior: %v", err)
	}
	c := core.NewSeeded(2)
	low, high := math.Inf(1), math.Inf(-1)
	for _, v := range d.RVS(2000, c) {
		f := v.Float64()
		if f < d.Low || f > d.High {
			t.Fatalf("log-uniform draw out of bounds: %v", f)
		}
		low = math.Min(low, f)
		high = math.Max(high, f)
	}
	// log 空間均勻：小數量級不該缺席
	if low > 1e-2 {
		t.Errorf("log-uniform draws never reached the low decades, min=%v", low)
	}
	if high < 1 {
		t.Errorf("log-uniform draws never reached the high decades, max=%v", high)
	}
}

// TestWeightedCategoricalBias 驗證帶權類別維度的分佈偏向
func TestWeightedCategoricalBias(t *testing.T) {
	d, err := NewCategoricalWeighted([]Value{Str("x"), Str("y")}, []float64{0.9, 0.1})
	if err != nil {
		t.Fatalf("NewCategoricalWeighted: %v", err)
	}
	c := core.NewSeeded(3)
	hits := 0
	trials := 10000
	for _, v := range d.RVS(trials, c) {
		if v == Str("x") {
			hits++
		}
	}
	rate := float64(hits) / float64(trials)
	if rate < 0.85 || rate > 0.95 {
		t.Errorf("weighted categorical mismatch: expected ~0.90, got %.4f", rate)
	}
}

// -----------------------------------------------------------------------------
// Constraint construction
// -----------------------------------------------------------------------------

// TestSingleTypeChecks 驗證 Single 建構期的型別規則
func TestSingleTypeChecks(t *testing.T) {
	// integer 維度只收 int
	if _, err := NewSingle(0, Float(5), IntegerDim); !errs.IsKind(err, errs.KindType) {
		t.Errorf("float single on integer type should be KindType, got %v", err)
	}
	// real 維度只收 float
	if _, err := NewSingle(0, Int(5), RealDim); !errs.IsKind(err, errs.KindType) {
		t.Errorf("int single on real type should be KindType, got %v", err)
	}
	// categorical 三種都收
	for _, v := range []Value{Int(5), Float(5), Str("five")} {
		if _, err := NewSingle(0, v, CategoricalDim); err != nil {
			t.Errorf("categorical single should accept %s, got %v", v.Kind(), err)
		}
	}
	// 負的維度索引
	if _, err := NewSingle(-1, Int(5), IntegerDim); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("negative dim should be KindValue, got %v", err)
	}
	// 未知維度型別
	if _, err := NewSingle(0, Int(5), DimType(99)); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("unknown dim type should be KindValue, got %v", err)
	}
}

// TestBoundShapeChecks 驗證 bound 形約束的結構規則
func TestBoundShapeChecks(t *testing.T) {
	// 長度必須 > 1
	if _, err := NewInclusive(0, []Value{Float(1)}, RealDim); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("single-element bounds should be KindValue, got %v", err)
	}
	// 非類別維度長度必須剛好 2
	if _, err := NewExclusive(0, []Value{Float(1), Float(2), Float(3)}, RealDim); !errs.IsKind(err, errs.KindValue) {
		t.Errorf("3-element numeric bounds should be KindValue, got %v", err)
	}
	// 元素型別必須相符
	if _, err := NewInclusive(0, []Value{Int(1), Int(2)}, RealDim); !errs.IsKind(err, errs.KindType) {
		t.Errorf("int bounds on real type should be KindType, got %v", err)
	}
	if _, err := NewInclusive(0, []Value{Float(1), Float(2)}, IntegerDim); !errs.IsKind(err, errs.KindType) {
		t.Errorf("float bounds on integer type should be KindType, got %v", err)
	}
	// 類別維度可以超過 2 個、混搭型別
	if _, err := NewInclusive(1, []Value{Str("a"), Int(3), Float(0.5)}, CategoricalDim); err != nil {
		t.Errorf("mixed categorical bounds should build, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// CheckConstraints / NewConstraints
// -----------------------------------------------------------------------------

// TestCheckConstraintsIndexAndType 驗證索引與宣告型別的交叉檢查
func TestCheckConstraintsIndexAndType(t *testing.T) {
	sp := mustSpace(t, mustInteger(t, 1, 10), mustCategorical(t, Str("a"), Str("b"), Str("c")))

	// nil 列表
	_, err := NewConstraints(sp, nil)
	wantKind(t, err, errs.KindType, "nil list")

	// 索引超出範圍
	_, err = NewConstraints(sp, []Constraint{mustSingle(t, 5, Int(3), IntegerDim)})
	wantKind(t, err, errs.KindIndex, "out-of-range dim")

	// 宣告 integer 卻綁在 categorical 維度
	_, err = NewConstraints(sp, []Constraint{mustSingle(t, 1, Int(3), IntegerDim)})
	wantKind(t, err, errs.KindType, "declared type mismatch")
}

// TestDuplicateSingleRejected 驗證同維度重複 Single 為 KindIndex
func TestDuplicateSingleRejected(t *testing.T) {
	sp := mustSpace(t, mustInteger(t, 1, 10))
	_, err := NewConstraints(sp, []Constraint{
		mustSingle(t, 0, Int(3), IntegerDim),
		mustSingle(t, 0, Int(7), IntegerDim),
	})
	wantKind(t, err, errs.KindIndex, "duplicate single")
}

// TestDomainContainment 驗證值與 bound 的定義域包含檢查為 KindValue
func TestDomainContainment(t *testing.T) {
	sp := mustSpace(t, mustInteger(t, 1, 10), mustCategorical(t, Str("a"), Str("b")))

	// Single 值超出數值範圍
	_, err := NewConstraints(sp, []Constraint{mustSingle(t, 0, Int(11), IntegerDim)})
	wantKind(t, err, errs.KindValue, "single out of range")

	// bound 元素超出數值範圍
	_, err = NewConstraints(sp, []Constraint{
		mustInclusive(t, 0, []Value{Int(0), Int(5)}, IntegerDim),
	})
	wantKind(t, err, errs.KindValue, "bound out of range")

	// 類別值不在類別集合中
	_, err = NewConstraints(sp, []Constraint{
		mustExclusive(t, 1, []Value{Str("a"), Str("z")}, CategoricalDim),
	})
	wantKind(t, err, errs.KindValue, "category not in set")
}

// TestConstraintsEqual 驗證約束集等價比較對順序敏感
func TestConstraintsEqual(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 10))
	a := mustInclusive(t, 0, []Value{Float(0), Float(1)}, RealDim)
	b := mustInclusive(t, 0, []Value{Float(5), Float(6)}, RealDim)

	cs1 := mustConstraints(t, sp, []Constraint{a, b})
	cs2 := mustConstraints(t, sp, []Constraint{a, b})
	cs3 := mustConstraints(t, sp, []Constraint{b, a})

	if !cs1.Equal(cs2) {
		t.Error("same ordered lists should be equal")
	}
	if cs1.Equal(cs3) {
		t.Error("reordered lists should not be equal")
	}
	if cs1.Equal(nil) {
		t.Error("nil should not be equal")
	}
}

// -----------------------------------------------------------------------------
// ValidateSample 語意
// -----------------------------------------------------------------------------

// TestInclusiveORSemantics 同維度多條 Inclusive 取 OR
func TestInclusiveORSemantics(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 10))
	cs := mustConstraints(t, sp, []Constraint{
		mustInclusive(t, 0, []Value{Float(0), Float(1)}, RealDim),
		mustInclusive(t, 0, []Value{Float(5), Float(6)}, RealDim),
	})

	if cs.ValidateSample([]Value{Float(3.0)}) {
		t.Error("3.0 is in neither range, should be invalid")
	}
	if !cs.ValidateSample([]Value{Float(0.5)}) {
		t.Error("0.5 is in [0,1], should be valid")
	}
	if !cs.ValidateSample([]Value{Float(5.5)}) {
		t.Error("5.5 is in [5,6], should be valid")
	}
}

// TestExclusiveANDSemantics 同維度多條 Exclusive 取 AND
func TestExclusiveANDSemantics(t *testing.T) {
	sp := mustSpace(t, mustInteger(t, 0, 10))
	cs := mustConstraints(t, sp, []Constraint{
		mustExclusive(t, 0, []Value{Int(0), Int(2)}, IntegerDim),
		mustExclusive(t, 0, []Value{Int(8), Int(10)}, IntegerDim),
	})

	if cs.ValidateSample([]Value{Int(1)}) {
		t.Error("1 is inside the first excluded range, should be invalid")
	}
	if cs.ValidateSample([]Value{Int(9)}) {
		t.Error("9 is inside the second excluded range, should be invalid")
	}
	if !cs.ValidateSample([]Value{Int(5)}) {
		t.Error("5 avoids both excluded ranges, should be valid")
	}
}

// TestValidateSampleCombination 驗證逐維判定的合取語意
func TestValidateSampleCombination(t *testing.T) {
	sp := mustSpace(t,
		mustInteger(t, 1, 10),
		mustCategorical(t, Str("a"), Str("b"), Str("c")),
	)
	cs := mustConstraints(t, sp, []Constraint{
		mustSingle(t, 0, Int(5), IntegerDim),
		mustInclusive(t, 1, []Value{Str("a"), Str("b")}, CategoricalDim),
	})

	if !cs.ValidateSample([]Value{Int(5), Str("a")}) {
		t.Error("(5, a) satisfies both, should be valid")
	}
	if cs.ValidateSample([]Value{Int(4), Str("a")}) {
		t.Error("first coordinate violates the single pin")
	}
	if cs.ValidateSample([]Value{Int(5), Str("c")}) {
		t.Error("second coordinate is outside the inclusive set")
	}
}

// TestValidateSampleNoConstraints 無約束時任何型別正確的點都合法
func TestValidateSampleNoConstraints(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 1))
	cs := mustConstraints(t, sp, []Constraint{})
	if !cs.ValidateSample([]Value{Float(0.5)}) {
		t.Error("empty constraint set should accept everything")
	}
}

// -----------------------------------------------------------------------------
// RVS
// -----------------------------------------------------------------------------

// TestRVSQuotaAndValidity 回傳的每個點都合法且數量精確
func TestRVSQuotaAndValidity(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 10), mustInteger(t, 0, 100))
	cs := mustConstraints(t, sp, []Constraint{
		mustInclusive(t, 0, []Value{Float(2), Float(3)}, RealDim),
		mustExclusive(t, 1, []Value{Int(40), Int(60)}, IntegerDim),
	})

	points, err := cs.RVSSeed(25, 7)
	if err != nil {
		t.Fatalf("RVSSeed: %v", err)
	}
	if len(points) != 25 {
		t.Fatalf("expected 25 points, got %d", len(points))
	}
	for i, p := range points {
		if len(p) != sp.NDims() {
			t.Fatalf("point %d has %d coords, want %d", i, len(p), sp.NDims())
		}
		if !cs.ValidateSample(p) {
			t.Fatalf("point %d does not satisfy the constraint set: %v", i, p)
		}
	}
}

// TestRVSDeterminism 同 seed 同約束集重現同一串點
func TestRVSDeterminism(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 1), mustCategorical(t, Str("a"), Str("b"), Str("c")))
	cs := mustConstraints(t, sp, []Constraint{
		mustExclusive(t, 1, []Value{Str("c"), Str("a")}, CategoricalDim),
	})

	p1, err := cs.RVSSeed(10, 42)
	if err != nil {
		t.Fatalf("first RVSSeed: %v", err)
	}
	p2, err := cs.RVSSeed(10, 42)
	if err != nil {
		t.Fatalf("second RVSSeed: %v", err)
	}
	for i := range p1 {
		for d := range p1[i] {
			if p1[i][d] != p2[i][d] {
				t.Fatalf("point %d coord %d differs: %v vs %v", i, d, p1[i][d], p2[i][d])
			}
		}
	}
}

// TestRVSSinglePinsColumn 有 Single 的維度整欄都是釘住的值
func TestRVSSinglePinsColumn(t *testing.T) {
	sp := mustSpace(t, mustInteger(t, 1, 10), mustReal(t, 0, 1))
	cs := mustConstraints(t, sp, []Constraint{mustSingle(t, 0, Int(5), IntegerDim)})

	points, err := cs.RVSSeed(20, 3)
	if err != nil {
		t.Fatalf("RVSSeed: %v", err)
	}
	for _, p := range points {
		if p[0] != Int(5) {
			t.Fatalf("pinned coordinate should be 5, got %v", p[0])
		}
	}
}

// TestRVSInfeasibleFailsFatally 交集為空的約束集在預算內以 KindRuntime 失敗
func TestRVSInfeasibleFailsFatally(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 10))
	cs := mustConstraints(t, sp, []Constraint{
		mustInclusive(t, 0, []Value{Float(0), Float(1)}, RealDim),
		mustExclusive(t, 0, []Value{Float(0), Float(1)}, RealDim),
	})

	_, err := cs.RVSSeed(5, 1)
	wantKind(t, err, errs.KindRuntime, "infeasible configuration")
}

// TestRVSZeroSamples n <= 0 回傳空結果而不是錯誤
func TestRVSZeroSamples(t *testing.T) {
	sp := mustSpace(t, mustReal(t, 0, 1))
	cs := mustConstraints(t, sp, []Constraint{})
	points, err := cs.RVSSeed(0, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
}

// TestRVSEndToEnd 整數 + 類別的端到端情境
func TestRVSEndToEnd(t *testing.T) {
	sp := mustSpace(t,
		mustInteger(t, 1, 10),
		mustCategorical(t, Str("a"), Str("b"), Str("c")),
	)
	cs := mustConstraints(t, sp, []Constraint{
		mustSingle(t, 0, Int(5), IntegerDim),
		mustInclusive(t, 1, []Value{Str("a"), Str("b")}, CategoricalDim),
	})

	points, err := cs.RVSSeed(5, 42)
	if err != nil {
		t.Fatalf("RVSSeed: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	for _, p := range points {
		if p[0] != Int(5) {
			t.Errorf("first coordinate should be pinned to 5, got %v", p[0])
		}
		if p[1] != Str("a") && p[1] != Str("b") {
			t.Errorf("second coordinate should be in {a,b}, got %v", p[1])
		}
	}
}

// TestSpaceRVSUnconstrained 無約束抽樣的形狀與定義域
func TestSpaceRVSUnconstrained(t *testing.T) {
	sp := mustSpace(t, mustReal(t, -1, 1), mustInteger(t, 0, 5))
	rows := sp.RVS(50, core.NewSeeded(5))
	if len(rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(rows))
	}
	for _, row := range rows {
		for d, v := range row {
			if !sp.Dimensions()[d].Contains(v) {
				t.Fatalf("draw out of domain at dim %d: %v", d, v)
			}
		}
	}
}
