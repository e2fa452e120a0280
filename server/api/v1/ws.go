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
	"errors"
	"net/http"

	"github.com/zintix-labs/royale/hub"
)

// WS GET /v1/ws?token=
func (h *Handler) WS(w http.ResponseWriter, r *http.Request) {
	uid := user(r).ID
	if err := h.d.Hub.Serve(w, r, uid); err != nil {
		if errors.Is(err, hub.ErrClosed) {
			h.fail(w, r, err)
			return
		}
		// Upgrade 失敗時已回應
		h.log.Debug("ws closed", "uid", uid, "err", err)
	}
}
