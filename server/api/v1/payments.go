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
	"github.com/zintix-labs/royale/payment"
)

// PaymentMethods GET /v1/payments/methods
func (h *Handler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, map[string]any{
		"methods":       payment.Methods(),
		"quick_amounts": payment.QuickAmounts,
	})
}

func (h *Handler) decodePayment(r *http.Request) (payment.Request, error) {
	var req payment.Request
	err := dto.DecodeJSON(r, &req)
	return req, err
}

// Deposit POST /v1/payments/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodePayment(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.d.Payments.Deposit(user(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, tx)
}

// Withdraw POST /v1/payments/withdraw；回應 202，等待後台核准。
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodePayment(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.d.Payments.Withdraw(user(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, tx)
}
