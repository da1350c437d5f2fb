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
)

type SpacesHandler struct {
	Lab *paramlab.Lab
}

func NewSpacesHandler(lab *paramlab.Lab) (*SpacesHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab required")
	}
	return &SpacesHandler{Lab: lab}, nil
}

// Spaces 回傳 registry 內所有搜尋空間的摘要。
func (sh *SpacesHandler) Spaces(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SpacesResponse struct {
		Spaces []paramlab.Entry `json:"spaces"`
	}
	// ---
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := SpacesResponse{Spaces: sh.Lab.Entries()}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
