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

	"github.com/go-chi/chi/v5"
)

// Notifications GET /v1/notifications
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	uid := user(r).ID
	h.ok(w, r, map[string]any{
		"notifications": h.d.Notes.List(uid),
		"unread":        h.d.Notes.UnreadCount(uid),
	})
}

// ReadNotification POST /v1/notifications/{id}/read
func (h *Handler) ReadNotification(w http.ResponseWriter, r *http.Request) {
	uid := user(r).ID
	if err := h.d.Notes.MarkRead(uid, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, map[string]int{"unread": h.d.Notes.UnreadCount(uid)})
}

// ReadAllNotifications POST /v1/notifications/read-all
func (h *Handler) ReadAllNotifications(w http.ResponseWriter, r *http.Request) {
	n := h.d.Notes.MarkAllRead(user(r).ID)
	h.ok(w, r, map[string]int{"marked": n, "unread": 0})
}
