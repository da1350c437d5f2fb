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
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/zintix-labs/paramlab"
	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/recorder"
	"github.com/zintix-labs/paramlab/server/httperr"
	"github.com/zintix-labs/paramlab/space"
	"github.com/zintix-labs/paramlab/stats"
)

const maxSampleN = 1_000_000

type SampleHandler struct {
	Lab        *paramlab.Lab
	MaxWorkers int
}

func NewSampleHandler(lab *paramlab.Lab, maxWorkers int) (*SampleHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab required")
	}
	return &SampleHandler{Lab: lab, MaxWorkers: max(1, maxWorkers)}, nil
}

// Sample 對指定搜尋空間抽取 n 個合法點。
//
// GET 以 query string 帶參數；POST 以 JSON body 帶參數，
// body 可用 setting 欄位內嵌一份 YAML 設定取代 name。
func (sh *SampleHandler) Sample(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SampleRequestBody struct {
		Name    string `json:"name,omitempty"`
		Setting string `json:"setting,omitempty"`
		N       int    `json:"n"`
		Seed    *int64 `json:"seed,omitempty"`
		Workers int    `json:"workers,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SampleResponse struct {
		Points   [][]space.Value     `json:"points"`
		Report   *stats.SampleReport `json:"report"`
		Seed     int64               `json:"seed"`
		UsedTime int64               `json:"used_ms"`
	}
	// ---
	req := new(SampleRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		// name
		if s := q.URL.Query().Get("name"); s != "" {
			req.Name = s
		} else {
			httperr.Errs(w, errs.NewWarn("name is required"))
			return
		}

		// n
		if s := q.URL.Query().Get("n"); s != "" {
			u, err := strconv.Atoi(s)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("n must be integer"))
				return
			}
			req.N = u
		} else {
			httperr.Errs(w, errs.NewWarn("n is required"))
			return
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return
			}
			v := u
			req.Seed = &v
		}

		// workers
		if s := q.URL.Query().Get("workers"); s != "" {
			u, err := strconv.Atoi(s)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("workers must be integer"))
				return
			}
			req.Workers = u
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	if req.Name == "" && req.Setting == "" {
		httperr.Errs(w, errs.NewWarn("name or setting is required"))
		return
	}
	if req.N < 1 || req.N > maxSampleN {
		httperr.Errs(w, errs.NewWarn("n must be between 1 to 1,000,000"))
		return
	}
	if req.Workers < 0 || req.Workers > sh.MaxWorkers {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("workers must be between 0 to %d", sh.MaxWorkers)))
		return
	}

	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	var (
		s   *paramlab.Sampler
		err error
	)
	if req.Setting != "" {
		s, err = sh.Lab.NewSamplerByYAML([]byte(req.Setting), *req.Seed)
	} else {
		s, err = sh.Lab.NewSamplerWithSeed(req.Name, *req.Seed)
	}
	if err != nil {
		// 這裡的錯誤來自 paramlab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "build sampler err"))
		return
	}

	var (
		rep  *stats.SampleReport
		pr   *recorder.PointRecorder
		used time.Duration
	)
	if req.Workers > 1 {
		rep, pr, used, err = s.SampleMP(req.N, req.Workers, false)
	} else {
		rep, pr, used, err = s.Sample(req.N, false)
	}
	if err != nil {
		// 這裡的錯誤來自 sampler 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "sample err"))
		return
	}

	resp := SampleResponse{
		Points:   pr.Points,
		Report:   rep,
		Seed:     s.InitSeed(),
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
