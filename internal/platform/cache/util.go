package cache

import (
	"time"
)

// jst は Asia/Tokyo のタイムゾーンです。tzdataが無い環境では固定オフセットを使います。
var jst = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}()

// TimeUntilNext8AM は次の午前8時（日本時間）までの期間を返します。
// 楽天レシピのランキングは毎朝更新されるため、キャッシュの有効期限に使います。
func TimeUntilNext8AM() time.Duration {
	return timeUntilNext8AM(time.Now())
}

func timeUntilNext8AM(now time.Time) time.Duration {
	now = now.In(jst)
	next8am := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, jst)

	// 今日の午前8時ちょうど以降なら明日の午前8時
	if !now.Before(next8am) {
		next8am = next8am.AddDate(0, 0, 1)
	}
	return next8am.Sub(now)
}
