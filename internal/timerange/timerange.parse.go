package timerange

import (
	"strconv"
	"strings"
	"time"
)

// Định dạng key bucket theo lịch local.
const (
	DayKeyLayout   = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// FormatInLocalDay trả về "YYYY-MM-DD" của t nhìn từ timezone loc.
// Đây là định dạng chuẩn cho key bucket ngày, dùng chung cho code Go và $dateToString phía MongoDB.
func FormatInLocalDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// FormatInLocalMonth trả về "YYYY-MM" của t nhìn từ timezone loc.
func FormatInLocalMonth(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthKeyLayout)
}

// ParseLocalDate parse chuỗi "YYYY-MM-DD" (hoặc ISO dài hơn, chỉ lấy 10 ký tự đầu) thành nửa đêm local.
// ok = false nếu không phải số hoặc ngày/tháng/năm ngoài khoảng (vd: 2025-02-30).
func ParseLocalDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(DayKeyLayout) {
		return time.Time{}, false
	}
	s = s[:len(DayKeyLayout)]
	if s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	// Atoi nhận dấu +/-, nên kiểm tra từng ký tự là chữ số
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return time.Time{}, false
		}
	}

	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return time.Time{}, false
	}
	if year < MinYear || year > MaxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date chuẩn hóa 30/02 thành 02/03: coi như ngày không hợp lệ
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateRange parse cặp ngày start/end thành [đầu ngày start, cuối ngày end] theo lịch local.
// ok = false nếu một trong hai chuỗi sai định dạng, hoặc end trước start; caller tự fallback về kỳ mặc định.
func ParseDateRange(startStr, endStr string, loc *time.Location) (Window, bool) {
	start, ok := ParseLocalDate(startStr, loc)
	if !ok {
		return Window{}, false
	}
	endDay, ok := ParseLocalDate(endStr, loc)
	if !ok {
		return Window{}, false
	}
	end := endDay.AddDate(0, 0, 1).Add(-EndOfDayPrecision)
	if end.Before(start) {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}
