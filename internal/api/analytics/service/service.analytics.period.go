package analyticssvc

import (
	"time"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/timerange"
)

// Nguồn của kỳ chính
const (
	PeriodSourceMonthYear = "month_year"
	PeriodSourceDateRange = "date_range"
	PeriodSourceCustom    = "custom"
	PeriodSourceDefault   = "default"
)

// DefaultPeriodDays: không có filter thời gian thì lấy 30 ngày gần nhất
const DefaultPeriodDays = 30

// ResolvedPeriod là kỳ chính đã resolve cùng các window phụ thuộc
type ResolvedPeriod struct {
	Primary     timerange.Window
	Previous    timerange.Window
	ThisMonth   timerange.Window
	Granularity timerange.Granularity
	Source      string
}

// ResolvePeriod chọn kỳ chính theo thứ tự: month+year (khi không có startDate/endDate) → dateRange → startDate/endDate → 30 ngày gần nhất.
// Kỳ trước của month+year là tháng lịch liền trước; các trường hợp khác là window liền trước cùng độ dài.
// Chỉ month/year sai mới trả lỗi; startDate/endDate sai định dạng thì rơi về mặc định.
func ResolvePeriod(f analyticsdto.DashboardFilters, now time.Time, loc *time.Location) (ResolvedPeriod, error) {
	var rp ResolvedPeriod

	if f.HasMonthYear() {
		w, err := timerange.MonthYearRange(f.Month, f.Year, loc)
		if err != nil {
			return ResolvedPeriod{}, err
		}
		rp.Primary = w
		rp.ThisMonth = w
		rp.Source = PeriodSourceMonthYear
		pm, py := timerange.PreviousMonth(f.Month, f.Year)
		if prev, err := timerange.MonthYearRange(pm, py, loc); err == nil {
			rp.Previous = prev
		} else {
			rp.Previous = timerange.PreviousPeriod(w, loc)
		}
		rp.Granularity = timerange.GranularityFor(rp.Primary, loc)
		return rp, nil
	}

	if w, ok := dateRangeWindow(f.DateRange, now, loc); ok {
		rp.Primary = w
		rp.Source = PeriodSourceDateRange
	} else if w, ok := timerange.ParseDateRange(f.StartDate, f.EndDate, loc); ok {
		rp.Primary = w
		rp.Source = PeriodSourceCustom
	} else {
		rp.Primary = timerange.LastNDaysRange(DefaultPeriodDays, now, loc)
		rp.Source = PeriodSourceDefault
	}
	rp.Previous = timerange.PreviousPeriod(rp.Primary, loc)

	// "Tháng này" theo month/year nếu có, không thì tháng hiện tại
	rp.ThisMonth = timerange.ThisMonthRange(now, loc)
	if f.Month != 0 && f.Year != 0 {
		if w, err := timerange.MonthYearRange(f.Month, f.Year, loc); err == nil {
			rp.ThisMonth = w
		}
	}
	rp.Granularity = timerange.GranularityFor(rp.Primary, loc)
	return rp, nil
}

// dateRangeWindow map token dateRange sang window
func dateRangeWindow(token string, now time.Time, loc *time.Location) (timerange.Window, bool) {
	switch token {
	case "today":
		return timerange.TodayRange(now, loc), true
	case "this_month":
		return timerange.ThisMonthRange(now, loc), true
	case "7d":
		return timerange.LastNDaysRange(7, now, loc), true
	case "30d":
		return timerange.LastNDaysRange(30, now, loc), true
	case "90d":
		return timerange.LastNDaysRange(90, now, loc), true
	case "1y":
		return timerange.LastNDaysRange(365, now, loc), true
	}
	return timerange.Window{}, false
}
