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
	"fmt"
	"strings"

	"github.com/zintix-labs/paramlab/errs"
)

// Constraint 限制單一維度合法值的規則。
//
// 三種變體：
//   - Single：把維度釘在一個值上。
//   - Inclusive：值必須落在允許範圍/集合內；同維度多條之間取 OR。
//   - Exclusive：值必須落在禁止範圍/集合外；同維度多條之間取 AND。
//
// Validate 對任意 Value 都是 total 的，永不失敗；
// 所有型別與定義域檢查都在建構期完成。
type Constraint interface {
	// Validate 回報 v 是否滿足本條約束。
	Validate(v Value) bool
	// Dimension 回傳約束綁定的維度索引。
	Dimension() int
	// Type 回傳約束宣告的維度型別，建構約束集時會與實際維度比對。
	Type() DimType
	// Equal 回報兩條約束是否等價（變體、維度、參數皆相同）。
	Equal(o Constraint) bool
}

// validDimType 回報 t 是否為三種已知維度型別之一。
func validDimType(t DimType) bool {
	return t == RealDim || t == IntegerDim || t == CategoricalDim
}

// checkValueKind 驗證約束攜帶值的原生型別與宣告的維度型別相符。
func checkValueKind(v Value, t DimType, what string) error {
	switch t {
	case CategoricalDim:
		// 類別維度允許 int/float/str 混搭
		return nil
	case IntegerDim:
		if v.Kind() != ValueInt {
			return errs.Typef("%s for integer dimension must be int, got %s", what, v.Kind())
		}
	case RealDim:
		if v.Kind() != ValueFloat {
			return errs.Typef("%s for real dimension must be float, got %s", what, v.Kind())
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Single
// -----------------------------------------------------------------------------

// Single 固定值約束：該維度抽出的值必須等於 value。
// 取樣時該維度不再抽亂數，直接填入 value（見 Constraints.RVS）。
type Single struct {
	dim     int
	value   Value
	dimType DimType
}

// NewSingle 建立固定值約束。
//
// 建構期檢查：
//   - dimType 必須是三種已知維度型別之一（KindValue）。
//   - value 的原生型別必須與 dimType 相符（KindType）。
//   - dim 不可為負（KindValue）。
func NewSingle(dim int, value Value, dimType DimType) (*Single, error) {
	if !validDimType(dimType) {
		return nil, errs.Valuef("dimension type must be real, integer or categorical, got %d", dimType)
	}
	if err := checkValueKind(value, dimType, "single constraint value"); err != nil {
		return nil, err
	}
	if dim < 0 {
		return nil, errs.Valuef("constraint dimension must not be negative, got %d", dim)
	}
	return &Single{dim: dim, value: value, dimType: dimType}, nil
}

func (s *Single) Validate(v Value) bool { return v == s.value }

func (s *Single) Dimension() int { return s.dim }

func (s *Single) Type() DimType { return s.dimType }

// Value 回傳釘住的值。
func (s *Single) Value() Value { return s.value }

func (s *Single) Equal(o Constraint) bool {
	os, ok := o.(*Single)
	return ok && os.dim == s.dim && os.value == s.value && os.dimType == s.dimType
}

func (s *Single) String() string {
	return fmt.Sprintf("single(dim=%d value=%s type=%s)", s.dim, s.value, s.dimType)
}

// -----------------------------------------------------------------------------
// Inclusive / Exclusive（bound 形約束）
// -----------------------------------------------------------------------------

// checkBoundShape 驗證 bound 形約束（Inclusive/Exclusive）共用的結構規則。
//
// 建構期檢查：
//   - bounds 長度必須 > 1；非類別維度必須剛好為 2（KindValue）。
//   - 每個 bound 元素的原生型別必須與 dimType 相符（KindType）。
//   - dimType 必須是三種已知維度型別之一、dim 不可為負（KindValue）。
func checkBoundShape(dim int, bounds []Value, dimType DimType) error {
	if len(bounds) <= 1 {
		return errs.Valuef("bounds must have length > 1, got %d", len(bounds))
	}
	if dimType != CategoricalDim && len(bounds) != 2 {
		return errs.Valuef("bounds length must be 2 for non-categorical constraints, got %d", len(bounds))
	}
	if !validDimType(dimType) {
		return errs.Valuef("dimension type must be real, integer or categorical, got %d", dimType)
	}
	for _, b := range bounds {
		if err := checkValueKind(b, dimType, "bound"); err != nil {
			return err
		}
	}
	if dim < 0 {
		return errs.Valuef("constraint dimension must not be negative, got %d", dim)
	}
	return nil
}

// within 回報 v 是否落在 bounds 之內。
// 類別維度看集合成員、數值維度看 bounds[0] <= v <= bounds[1]；
// 同一份實作同時服務 Inclusive（原樣）與 Exclusive（取反）。
func within(v Value, bounds []Value, dimType DimType) bool {
	if dimType == CategoricalDim {
		for _, b := range bounds {
			if b == v {
				return true
			}
		}
		return false
	}
	// 數值比較走 float64 視角；字串的 Num() 是 NaN，任何比較都是 false。
	n := v.Num()
	return n >= bounds[0].Num() && n <= bounds[1].Num()
}

func boundsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fmtBounds(bounds []Value) string {
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = b.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Inclusive 允許範圍約束：值必須落在 bounds 內（數值含端點，類別看成員）。
// 同一維度的多條 Inclusive 之間取 OR：命中任何一條即可。
type Inclusive struct {
	dim     int
	bounds  []Value
	dimType DimType
}

// NewInclusive 建立允許範圍約束，結構規則見 checkBoundShape。
func NewInclusive(dim int, bounds []Value, dimType DimType) (*Inclusive, error) {
	if err := checkBoundShape(dim, bounds, dimType); err != nil {
		return nil, err
	}
	return &Inclusive{dim: dim, bounds: bounds, dimType: dimType}, nil
}

func (c *Inclusive) Validate(v Value) bool { return within(v, c.bounds, c.dimType) }

func (c *Inclusive) Dimension() int { return c.dim }

func (c *Inclusive) Type() DimType { return c.dimType }

// Bounds 回傳允許範圍（勿修改）。
func (c *Inclusive) Bounds() []Value { return c.bounds }

func (c *Inclusive) Equal(o Constraint) bool {
	oc, ok := o.(*Inclusive)
	return ok && oc.dim == c.dim && oc.dimType == c.dimType && boundsEqual(oc.bounds, c.bounds)
}

func (c *Inclusive) String() string {
	return fmt.Sprintf("inclusive(dim=%d bounds=%s type=%s)", c.dim, fmtBounds(c.bounds), c.dimType)
}

// Exclusive 禁止範圍約束：值必須落在 bounds 外。
// 同一維度的多條 Exclusive 之間取 AND：每一條都必須避開。
type Exclusive struct {
	dim     int
	bounds  []Value
	dimType DimType
}

// NewExclusive 建立禁止範圍約束，結構規則見 checkBoundShape。
func NewExclusive(dim int, bounds []Value, dimType DimType) (*Exclusive, error) {
	if err := checkBoundShape(dim, bounds, dimType); err != nil {
		return nil, err
	}
	return &Exclusive{dim: dim, bounds: bounds, dimType: dimType}, nil
}

func (c *Exclusive) Validate(v Value) bool { return !within(v, c.bounds, c.dimType) }

func (c *Exclusive) Dimension() int { return c.dim }

func (c *Exclusive) Type() DimType { return c.dimType }

// Bounds 回傳禁止範圍（勿修改）。
func (c *Exclusive) Bounds() []Value { return c.bounds }

func (c *Exclusive) Equal(o Constraint) bool {
	oc, ok := o.(*Exclusive)
	return ok && oc.dim == c.dim && oc.dimType == c.dimType && boundsEqual(oc.bounds, c.bounds)
}

func (c *Exclusive) String() string {
	return fmt.Sprintf("exclusive(dim=%d bounds=%s type=%s)", c.dim, fmtBounds(c.bounds), c.dimType)
}
