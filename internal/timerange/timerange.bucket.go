package timerange

import "time"

// Granularity là đơn vị bucket của chuỗi thời gian.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// DailyGranularityMaxDays: window không quá 31 ngày lịch local thì chia bucket theo ngày, dài hơn thì theo tháng.
const DailyGranularityMaxDays = 31

// GranularityFor chọn granularity theo số ngày lịch local của window (không theo duration, vì ngày DST dài 23h/25h).
func GranularityFor(w Window, loc *time.Location) Granularity {
	if LocalDayCount(w, loc) <= DailyGranularityMaxDays {
		return GranularityDay
	}
	return GranularityMonth
}

// Layout trả về layout Go của key bucket.
func (g Granularity) Layout() string {
	if g == GranularityMonth {
		return MonthKeyLayout
	}
	return DayKeyLayout
}

// MongoFormat trả về format $dateToString tương ứng với Layout.
func (g Granularity) MongoFormat() string {
	if g == GranularityMonth {
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// Key format t thành key bucket theo lịch local.
func (g Granularity) Key(t time.Time, loc *time.Location) string {
	if g == GranularityMonth {
		return FormatInLocalMonth(t, loc)
	}
	return FormatInLocalDay(t, loc)
}

// BucketKeys trả về danh sách key liên tục, không trùng, không thiếu, từ ngày (tháng) chứa Start
// đến ngày (tháng) chứa End theo lịch local. Window rỗng (End < Start) trả về slice rỗng.
func BucketKeys(w Window, g Granularity, loc *time.Location) []string {
	if w.End.Before(w.Start) {
		return []string{}
	}

	s := w.Start.In(loc)
	e := w.End.In(loc)

	var cursor, last time.Time
	step := func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	if g == GranularityMonth {
		cursor = time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, loc)
		last = time.Date(e.Year(), e.Month(), 1, 0, 0, 0, 0, loc)
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	} else {
		cursor = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
		last = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
	}

	keys := make([]string, 0, 32)
	for !cursor.After(last) {
		keys = append(keys, g.Key(cursor, loc))
		cursor = step(cursor)
	}
	return keys
}
