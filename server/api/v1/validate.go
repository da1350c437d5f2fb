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

package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/paramlab"
	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/server/httperr"
	"github.com/zintix-labs/paramlab/space"
	"github.com/zintix-labs/paramlab/spacecfg"
)

type ValidateHandler struct {
	Lab *paramlab.Lab
}

func NewValidateHandler(lab *paramlab.Lab) (*ValidateHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab required")
	}
	return &ValidateHandler{Lab: lab}, nil
}

// Validate 判定單一點是否滿足指定搜尋空間的全部約束。
//
// POST body 帶 name（或 setting 內嵌一份 YAML 設定）與 point。
// point 是 JSON 陣列，座標型別依維度還原。
func (vh *ValidateHandler) Validate(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type ValidateRequestBody struct {
		Name    string `json:"name,omitempty"`
		Setting string `json:"setting,omitempty"`
		Point   []any  `json:"point"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type ValidateResponse struct {
		Valid bool `json:"valid"`
	}
	// ---
	if q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(ValidateRequestBody)
	if err := json.NewDecoder(q.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}

	// 業務檢驗
	var (
		ss  *spacecfg.SearchSetting
		err error
	)
	switch {
	case req.Setting != "":
		ss, err = spacecfg.GetSearchSettingByYAML([]byte(req.Setting))
		if err != nil {
			httperr.Errs(w, errs.Wrap(err, "parse setting err"))
			return
		}
	case req.Name != "":
		var ok bool
		ss, ok = vh.Lab.SettingByName(req.Name)
		if !ok {
			httperr.Errs(w, errs.NewWarn("name dose not exist in registry"))
			return
		}
	default:
		httperr.Errs(w, errs.NewWarn("name or setting is required"))
		return
	}

	sp := ss.Space()
	if len(req.Point) != sp.NDims() {
		httperr.Errs(w, errs.NewWarn("point length dose not match space dims"))
		return
	}
	point := make([]space.Value, len(req.Point))
	for d, raw := range req.Point {
		v, cerr := coordValue(raw, sp.Dimensions()[d])
		if cerr != nil {
			httperr.Errs(w, errs.Wrap(cerr, "decode point err"))
			return
		}
		point[d] = v
	}

	resp := ValidateResponse{Valid: ss.SpaceConstraints().ValidateSample(point)}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// coordValue 依目標維度把 JSON 原生值還原成 Value。
// encoding/json 的數字一律是 float64，整數維度取整值浮點；
// 類別維度先試整數形。
func coordValue(raw any, dim space.Dimension) (space.Value, error) {
	switch v := raw.(type) {
	case string:
		return space.Str(v), nil
	case float64:
		switch dim.Type() {
		case space.RealDim:
			return space.Float(v), nil
		case space.IntegerDim:
			n := int(v)
			if float64(n) != v {
				return space.Value{}, errs.Typef("integer coordinate must be whole, got %v", v)
			}
			return space.Int(n), nil
		default:
			if n := int(v); float64(n) == v && dim.Contains(space.Int(n)) {
				return space.Int(n), nil
			}
			return space.Float(v), nil
		}
	default:
		return space.Value{}, errs.Typef("unsupported coordinate %T (%v)", raw, raw)
	}
}
