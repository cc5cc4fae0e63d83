package cache

import (
	"time"
)

// TimeUntilNext は loc における次の hour 時ちょうどまでの期間を返します。
// 市場タイムゾーンの寄付前にキャッシュを失効させるために使います。
func TimeUntilNext(hour int, loc *time.Location, now time.Time) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	// 次の hour 時を計算
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// 今日の hour 時が既に過ぎている場合は翌日を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
