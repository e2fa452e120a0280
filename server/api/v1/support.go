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
	"net/http"

	"github.com/zintix-labs/royale/dto"
)

// SupportConversation GET /v1/support/messages
func (h *Handler) SupportConversation(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, h.d.Support.Conversation(user(r).ID))
}

// SupportSend POST /v1/support/messages
func (h *Handler) SupportSend(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := dto.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.d.Support.Send(user(r).ID, in.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, m)
}
