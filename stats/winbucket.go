package stats

import "sort"

// 贏倍區間: [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
var (
	winBucket    = []float64{1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000}
	winBucketStr = []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"}
)

// WinBucketStr 區間標籤，長度與 DistReport.WinCollect 一致。
func WinBucketStr() []string {
	return append([]string(nil), winBucketStr...)
}

// BucketIndex 以 win / stake 的贏倍定位區間。
func BucketIndex(win, stake int64) int {
	if win <= 0 || stake <= 0 {
		return 0
	}
	mult := float64(win) / float64(stake)
	// 第一個 > mult 的邊界
	i := sort.Search(len(winBucket), func(i int) bool { return winBucket[i] > mult })
	return i + 1
}
