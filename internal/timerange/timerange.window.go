// Package timerange chuyển các mô tả kỳ báo cáo (hôm nay, tháng này, N ngày gần nhất, tháng/năm, khoảng ngày tùy chọn)
// thành khoảng thời điểm tuyệt đối theo timezone của store, và ngược lại format thời điểm thành ngày/tháng local.
//
// Mọi hàm đều thuần (pure): thời điểm hiện tại và *time.Location được truyền vào từ bên ngoài.
// Khoảng luôn là inclusive-inclusive: [00:00:00.000 ngày đầu, 23:59:59.999 ngày cuối] theo lịch local.
package timerange

import (
	"fmt"
	"time"

	"greep_market/internal/common"
)

// EndOfDayPrecision là độ chính xác của mốc kết thúc: end = nửa đêm hôm sau - 1ms.
const EndOfDayPrecision = time.Millisecond

// Giới hạn năm hợp lệ cho MonthYearRange.
const (
	MinYear = 1900
	MaxYear = 2100
)

// Window là khoảng [Start, End] (inclusive) tính bằng thời điểm tuyệt đối.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration trả về độ dài khoảng (End - Start).
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains kiểm tra t có nằm trong [Start, End] không.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// String dùng cho log và cache key.
func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.UTC().Format(time.RFC3339Nano), w.End.UTC().Format(time.RFC3339Nano))
}

// StartOfDay trả về 00:00:00.000 của ngày local chứa t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay trả về 23:59:59.999 của ngày local chứa t.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-EndOfDayPrecision)
}

// dayWindow trả về window của đúng một ngày local.
func dayWindow(t time.Time, loc *time.Location) Window {
	start := StartOfDay(t, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-EndOfDayPrecision)}
}

// monthWindow trả về window từ ngày 1 đến ngày cuối của tháng local.
func monthWindow(year int, month time.Month, loc *time.Location) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-EndOfDayPrecision)}
}

// TodayRange trả về [nửa đêm local hôm nay, cuối ngày hôm nay].
func TodayRange(now time.Time, loc *time.Location) Window {
	return dayWindow(now, loc)
}

// YesterdayRange trả về window của ngày hôm qua theo lịch local.
func YesterdayRange(now time.Time, loc *time.Location) Window {
	today := StartOfDay(now, loc)
	return dayWindow(today.AddDate(0, 0, -1), loc)
}

// ThisMonthRange trả về tháng hiện tại theo lịch local.
func ThisMonthRange(now time.Time, loc *time.Location) Window {
	lt := now.In(loc)
	return monthWindow(lt.Year(), lt.Month(), loc)
}

// MonthYearRange trả về window của tháng month/year.
// Trả về lỗi InvalidPeriod nếu month ngoài [1,12] hoặc year ngoài [MinYear, MaxYear].
func MonthYearRange(month, year int, loc *time.Location) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, common.InvalidPeriodError(fmt.Sprintf("month %d ngoài khoảng 1-12", month))
	}
	if year < MinYear || year > MaxYear {
		return Window{}, common.InvalidPeriodError(fmt.Sprintf("year %d ngoài khoảng %d-%d", year, MinYear, MaxYear))
	}
	return monthWindow(year, time.Month(month), loc), nil
}

// LastNDaysRange trả về [nửa đêm (hôm nay - n ngày), cuối ngày hôm nay]. n < 0 được coi là 0.
func LastNDaysRange(n int, now time.Time, loc *time.Location) Window {
	if n < 0 {
		n = 0
	}
	today := StartOfDay(now, loc)
	return Window{
		Start: today.AddDate(0, 0, -n),
		End:   today.AddDate(0, 0, 1).Add(-EndOfDayPrecision),
	}
}

// TrailingMonthsRange trả về n tháng lịch gần nhất, tính cả tháng hiện tại (n <= 0 được coi là 1).
func TrailingMonthsRange(n int, now time.Time, loc *time.Location) Window {
	if n <= 0 {
		n = 1
	}
	current := ThisMonthRange(now, loc)
	return Window{
		Start: current.Start.AddDate(0, -(n - 1), 0),
		End:   current.End,
	}
}

// PreviousMonth trả về tháng liền trước (tháng 1 → tháng 12 năm trước).
func PreviousMonth(month, year int) (int, int) {
	if month <= 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// IsWholeDays true khi w bắt đầu lúc nửa đêm local và kết thúc lúc 23:59:59.999 local.
func IsWholeDays(w Window, loc *time.Location) bool {
	return w.Start.Equal(StartOfDay(w.Start, loc)) && w.End.Equal(EndOfDay(w.End, loc))
}

// LocalDayCount đếm số ngày lịch local trong w (tính cả hai đầu).
func LocalDayCount(w Window, loc *time.Location) int {
	s := w.Start.In(loc)
	e := w.End.In(loc)
	// So sánh theo ngày lịch, tránh lệch do DST
	sd := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	ed := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(ed.Sub(sd).Hours()/24) + 1
}

// PreviousPeriod trả về khoảng liền trước có cùng độ dài với w.
// Với window trọn ngày local, lùi đúng số ngày lịch (không lệch giờ khi qua DST);
// ngược lại lùi theo duration tuyệt đối.
func PreviousPeriod(w Window, loc *time.Location) Window {
	if IsWholeDays(w, loc) {
		days := LocalDayCount(w, loc)
		start := w.Start.In(loc).AddDate(0, 0, -days)
		return Window{Start: start, End: w.Start.Add(-EndOfDayPrecision)}
	}
	span := w.Duration()
	end := w.Start.Add(-EndOfDayPrecision)
	return Window{Start: end.Add(-span), End: end}
}
