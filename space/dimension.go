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

// Package space 定義參數搜尋空間：維度（real/integer/categorical）、
// 座標值（Value）、逐維約束（Single/Inclusive/Exclusive）與
// 約束下的拒絕取樣（Constraints.RVS）。
package space

import (
	"math"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
	"github.com/zintix-labs/paramlab/sdk/sampler"
	"gonum.org/v1/gonum/stat/distuv"
)

// DimType 維度型別標記。
type DimType uint8

const (
	RealDim DimType = iota
	IntegerDim
	CategoricalDim
)

var dimTypeMap = map[DimType]string{
	RealDim:        "real",
	IntegerDim:     "integer",
	CategoricalDim: "categorical",
}

func (t DimType) String() string {
	if s, ok := dimTypeMap[t]; ok {
		return s
	}
	return "unknown"
}

// Prior real 維度的抽樣先驗。
type Prior uint8

const (
	// PriorUniform 在 [low, high] 均勻抽樣。
	PriorUniform Prior = iota
	// PriorLogUniform 在 log 空間均勻抽樣後取 exp，適合跨數量級的參數
	// （learning rate、正則化係數等）。要求 low > 0。
	PriorLogUniform
)

// Dimension 搜尋空間中的一個軸。
//
// 合約：
//   - RVS 抽出的每個值都必須落在定義域內、且為本維度的原生型別。
//   - Contains 對任意 Value 都是 total 的：型別不符直接回 false。
//   - RVS 只透過傳入的 Core 取亂數，抽取次序對可重現性有意義。
type Dimension interface {
	Type() DimType
	RVS(n int, c *core.Core) []Value
	Contains(v Value) bool
}

// -----------------------------------------------------------------------------
// Real
// -----------------------------------------------------------------------------

// Real 連續維度，定義域 [Low, High]（含端點）。
type Real struct {
	Low   float64
	High  float64
	Prior Prior
}

// NewReal 建立連續維度。
func NewReal(low, high float64) (*Real, error) {
	return NewRealPrior(low, high, PriorUniform)
}

// NewRealPrior 建立帶先驗的連續維度。
func NewRealPrior(low, high float64, prior Prior) (*Real, error) {
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return nil, errs.Valuef("real dimension bounds must be finite, got [%v, %v]", low, high)
	}
	if low >= high {
		return nil, errs.Valuef("real dimension low must be less than high, got [%v, %v]", low, high)
	}
	if prior == PriorLogUniform && low <= 0 {
		return nil, errs.Valuef("log-uniform real dimension requires low > 0, got %v", low)
	}
	if prior != PriorUniform && prior != PriorLogUniform {
		return nil, errs.Valuef("unknown prior %d", prior)
	}
	return &Real{Low: low, High: high, Prior: prior}, nil
}

func (r *Real) Type() DimType { return RealDim }

// RVS 以共享 Core 作為亂數來源抽取 n 個浮點值。
// distuv.Uniform 直接吃 Core 當 Src，與其他維度共用同一條亂數序列。
func (r *Real) RVS(n int, c *core.Core) []Value {
	lo, hi := r.Low, r.High
	if r.Prior == PriorLogUniform {
		lo, hi = math.Log(r.Low), math.Log(r.High)
	}
	u := distuv.Uniform{Min: lo, Max: hi, Src: c}

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		x := u.Rand()
		if r.Prior == PriorLogUniform {
			x = math.Exp(x)
		}
		out[i] = Float(x)
	}
	return out
}

func (r *Real) Contains(v Value) bool {
	return v.Kind() == ValueFloat && v.Float64() >= r.Low && v.Float64() <= r.High
}

// -----------------------------------------------------------------------------
// Integer
// -----------------------------------------------------------------------------

// Integer 整數維度，定義域 [Low, High]（含端點）。
type Integer struct {
	Low  int
	High int
}

// NewInteger 建立整數維度。
func NewInteger(low, high int) (*Integer, error) {
	if low >= high {
		return nil, errs.Valuef("integer dimension low must be less than high, got [%d, %d]", low, high)
	}
	return &Integer{Low: low, High: high}, nil
}

func (d *Integer) Type() DimType { return IntegerDim }

func (d *Integer) RVS(n int, c *core.Core) []Value {
	span := d.High - d.Low + 1
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = Int(d.Low + c.IntN(span))
	}
	return out
}

func (d *Integer) Contains(v Value) bool {
	return v.Kind() == ValueInt && v.Int() >= d.Low && v.Int() <= d.High
}

// -----------------------------------------------------------------------------
// Categorical
// -----------------------------------------------------------------------------

// Categorical 類別維度：固定順序的類別集合，可混搭 int/float/string，
// 可帶先驗權重（權重透過 AliasTable 抽樣，無權重時均勻抽）。
type Categorical struct {
	Categories []Value

	alias *sampler.AliasTable // nil 表示均勻抽樣
}

// NewCategorical 建立均勻抽樣的類別維度。
func NewCategorical(categories ...Value) (*Categorical, error) {
	return NewCategoricalWeighted(categories, nil)
}

// NewCategoricalWeighted 建立帶先驗權重的類別維度。
// weights 為 nil 表示均勻；長度必須與 categories 一致，比例不需正規化。
func NewCategoricalWeighted(categories []Value, weights []float64) (*Categorical, error) {
	if len(categories) == 0 {
		return nil, errs.Valuef("categorical dimension requires at least one category")
	}
	seen := make(map[Value]struct{}, len(categories))
	for _, cat := range categories {
		if _, dup := seen[cat]; dup {
			return nil, errs.Valuef("duplicated category %s", cat)
		}
		seen[cat] = struct{}{}
	}

	d := &Categorical{Categories: categories}
	if weights != nil {
		if len(weights) != len(categories) {
			return nil, errs.Valuef("weights length %d does not match categories length %d", len(weights), len(categories))
		}
		at, err := sampler.BuildAliasTableProb(weights)
		if err != nil {
			return nil, errs.Wrap(err, "build categorical weight table")
		}
		d.alias = at
	}
	return d, nil
}

func (d *Categorical) Type() DimType { return CategoricalDim }

func (d *Categorical) RVS(n int, c *core.Core) []Value {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		var idx int
		if d.alias != nil {
			idx = d.alias.Pick(c)
		} else {
			idx = c.IntN(len(d.Categories))
		}
		out[i] = d.Categories[idx]
	}
	return out
}

func (d *Categorical) Contains(v Value) bool {
	for _, cat := range d.Categories {
		if cat == v {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Space
// -----------------------------------------------------------------------------

// Space 固定順序的維度序列；維度順序即點向量的座標順序。
type Space struct {
	dims []Dimension
}

// NewSpace 建立搜尋空間。
func NewSpace(dims ...Dimension) (*Space, error) {
	if len(dims) == 0 {
		return nil, errs.Valuef("space requires at least one dimension")
	}
	for i, d := range dims {
		if d == nil {
			return nil, errs.Valuef("dimension %d is nil", i)
		}
	}
	return &Space{dims: dims}, nil
}

// NDims 回傳維度數。
func (s *Space) NDims() int { return len(s.dims) }

// Dimensions 回傳維度序列（勿修改）。
func (s *Space) Dimensions() []Dimension { return s.dims }

// RVS 無約束地抽取 n 個點（row-major）。
// 逐維抽成欄再轉置，與 Constraints.RVS 的抽取次序一致。
func (s *Space) RVS(n int, c *core.Core) [][]Value {
	if n <= 0 {
		return nil
	}
	cols := make([][]Value, len(s.dims))
	for d, dim := range s.dims {
		cols[d] = dim.RVS(n, c)
	}
	rows := make([][]Value, n)
	for i := 0; i < n; i++ {
		row := make([]Value, len(s.dims))
		for d := range s.dims {
			row[d] = cols[d][i]
		}
		rows[i] = row
	}
	return rows
}
