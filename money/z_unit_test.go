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

package money

import "testing"

func TestFormat(t *testing.T) {
	cases := map[int64]string{
		0:       "0 RUB",
		950:     "950 RUB",
		12500:   "12,500 RUB",
		1000000: "1,000,000 RUB",
	}
	for v, want := range cases {
		if got := Format(v); got != want {
			t.Fatalf("Format(%d)=%q want %q", v, got, want)
		}
	}
	if got := Signed(500); got != "+500 RUB" {
		t.Fatalf("signed=%q", got)
	}
	if got := Signed(-500); got != "-500 RUB" {
		t.Fatalf("signed=%q", got)
	}
}
