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

package index

import "net/http"

const indexPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>paramlab</title></head>
<body>
<h1>paramlab</h1>
<p>constrained sampling service</p>
<ul>
<li>GET  /v1/spaces — registered search spaces</li>
<li>GET/POST /v1/sample — draw valid points</li>
<li>POST /v1/validate — validate a single point</li>
</ul>
</body>
</html>
`

// IndexHandlerFn 主頁：列出可用端點。
func IndexHandlerFn(w http.ResponseWriter, q *http.Request) {
	if q.URL.Path != "/" {
		http.NotFound(w, q)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}
