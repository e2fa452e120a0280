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

package account

var (
	vipThresholds = []int64{0, 1000, 5000, 20000, 50000, 100000}
	vipNames      = []string{"Novice", "Bronze", "Silver", "Gold", "Platinum", "Diamond"}
)

// VIP 由積分推得的等級
type VIP struct {
	Level    int    `json:"level"`
	Name     string `json:"name"`
	Points   int64  `json:"points"`
	Next     int64  `json:"next,omitempty"` // 下一級門檻；最高級為 0
	Progress int    `json:"progress"`       // 0..100
}

func VIPOf(points int64) VIP {
	if points < 0 {
		points = 0
	}
	lv := 0
	for i, th := range vipThresholds {
		if points >= th {
			lv = i
		}
	}
	v := VIP{Level: lv, Name: vipNames[lv], Points: points}
	if lv == len(vipThresholds)-1 {
		v.Progress = 100
		return v
	}
	lo, hi := vipThresholds[lv], vipThresholds[lv+1]
	v.Next = hi
	v.Progress = int((points - lo) * 100 / (hi - lo))
	return v
}
