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

// Constraints 一組已通過交叉驗證的約束，連同逐維索引。
//
// 建構即驗證：NewConstraints 先跑 CheckConstraints，全部通過才建索引；
// 不存在「部分合法」的約束集。建好之後唯讀，可跨多次 RVS 重複使用，
// 搜尋空間設定變更時整組丟棄重建。
//
// 逐維索引：
//   - single[d]：至多一條（建構期保證）。
//   - inclusive[d]：同維度多條之間 OR。
//   - exclusive[d]：同維度多條之間 AND。
type Constraints struct {
	space *Space
	list  []Constraint

	single    []*Single
	inclusive [][]*Inclusive
	exclusive [][]*Exclusive
}

// NewConstraints 以空間定義交叉驗證 list 並建立約束集。
//
// 驗證失敗時回傳的錯誤分類：
//   - KindType：list 為 nil、宣告型別與實際維度不符、或未知的約束變體。
//   - KindIndex：維度索引超出範圍、或同維度重複 Single。
//   - KindValue：Single 值或 bound 元素落在維度定義域之外。
func NewConstraints(sp *Space, list []Constraint) (*Constraints, error) {
	if sp == nil {
		return nil, errs.NewFatal("space is required")
	}
	if err := CheckConstraints(sp, list); err != nil {
		return nil, err
	}

	cs := &Constraints{
		space:     sp,
		list:      list,
		single:    make([]*Single, sp.NDims()),
		inclusive: make([][]*Inclusive, sp.NDims()),
		exclusive: make([][]*Exclusive, sp.NDims()),
	}
	for _, c := range list {
		switch cc := c.(type) {
		case *Single:
			cs.single[cc.Dimension()] = cc
		case *Inclusive:
			cs.inclusive[cc.Dimension()] = append(cs.inclusive[cc.Dimension()], cc)
		case *Exclusive:
			cs.exclusive[cc.Dimension()] = append(cs.exclusive[cc.Dimension()], cc)
		}
	}
	return cs, nil
}

// CheckConstraints 以空間定義檢查一串約束是否合法，錯誤分類同 NewConstraints。
// 檢查是窮盡的：逐條按列表順序檢查，第一個違規即失敗。
func CheckConstraints(sp *Space, list []Constraint) error {
	if list == nil {
		return errs.Typef("constraints must be a non-nil list")
	}

	seenSingle := make([]bool, sp.NDims())
	for i, c := range list {
		if c == nil {
			return errs.Typef("constraint %d is nil", i)
		}
		d := c.Dimension()
		if d < 0 || d >= sp.NDims() {
			return errs.Indexf("dimension index %d out of range for n_dims = %d", d, sp.NDims())
		}
		dim := sp.dims[d]
		if c.Type() != dim.Type() {
			return errs.Typef("constraint for %s dimension %d must be of dimension type %s, got %s",
				dim.Type(), d, dim.Type(), c.Type())
		}

		switch cc := c.(type) {
		case *Single:
			if seenSingle[d] {
				return errs.Indexf("can not add more than one single constraint to dimension %d", d)
			}
			seenSingle[d] = true
			if err := checkValueInDomain(dim, d, cc.Value()); err != nil {
				return err
			}
		case *Inclusive:
			if err := checkBoundsInDomain(dim, d, cc.Bounds()); err != nil {
				return err
			}
		case *Exclusive:
			if err := checkBoundsInDomain(dim, d, cc.Bounds()); err != nil {
				return err
			}
		default:
			return errs.Typef("constraint %d must be single, inclusive or exclusive", i)
		}
	}
	return nil
}

// checkValueInDomain 驗證 Single 值落在維度定義域內。
func checkValueInDomain(dim Dimension, d int, v Value) error {
	if !dim.Contains(v) {
		return errs.Valuef("value %s exceeds the domain of %s dimension %d", v, dim.Type(), d)
	}
	return nil
}

// checkBoundsInDomain 驗證每個 bound 元素都落在維度定義域內。
// 數值維度看範圍包含、類別維度看集合成員，與 Dimension.Contains 同一套判定。
func checkBoundsInDomain(dim Dimension, d int, bounds []Value) error {
	for _, b := range bounds {
		if !dim.Contains(b) {
			return errs.Valuef("bound %s exceeds the domain of %s dimension %d", b, dim.Type(), d)
		}
	}
	return nil
}

// Space 回傳約束集綁定的空間。
func (cs *Constraints) Space() *Space { return cs.space }

// List 回傳底層約束列表（勿修改；等價比較即基於此列表）。
func (cs *Constraints) List() []Constraint { return cs.list }

// Equal 回報兩個約束集是否等價：底層列表逐條、含順序地相等。
func (cs *Constraints) Equal(o *Constraints) bool {
	if o == nil || len(cs.list) != len(o.list) {
		return false
	}
	for i := range cs.list {
		if !cs.list[i].Equal(o.list[i]) {
			return false
		}
	}
	return true
}

// ValidateSample 回報一個點是否同時滿足所有約束。
//
// 逐維判定：single AND（沒有 inclusive 或命中任一條 inclusive）AND
// 避開每一條 exclusive；各維度判定之間取 AND。純函數、可短路、永不失敗。
//
// point 依空間的維度順序對齊；長度以 point 為準（超出空間的座標不檢查，
// 不足時只檢查給到的維度）。
func (cs *Constraints) ValidateSample(point []Value) bool {
	for d := 0; d < len(point) && d < cs.space.NDims(); d++ {
		// Single
		if s := cs.single[d]; s != nil {
			if !s.Validate(point[d]) {
				return false
			}
		}

		// Inclusive: 至少要命中一條
		if incs := cs.inclusive[d]; len(incs) > 0 {
			hit := false
			for _, c := range incs {
				if c.Validate(point[d]) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}

		// Exclusive: 每一條都必須避開
		for _, c := range cs.exclusive[d] {
			if !c.Validate(point[d]) {
				return false
			}
		}
	}
	return true
}

func (cs *Constraints) String() string {
	parts := make([]string, len(cs.list))
	for i, c := range cs.list {
		parts[i] = toString(c)
	}
	return "constraints(" + strings.Join(parts, ", ") + ")"
}

// toString 盡量用變體自己的 String；外部自訂實作退回固定格式。
func toString(c Constraint) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("constraint(dim=%d type=%s)", c.Dimension(), c.Type())
}
