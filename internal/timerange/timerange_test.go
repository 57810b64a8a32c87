package timerange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greep_market/internal/common"
)

var utcPlus3 = time.FixedZone("UTC+3", 3*60*60)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestTodayRange_LocalMidnightBoundaries(t *testing.T) {
	// 22:00 UTC ngày 10 đã là 01:00 ngày 11 ở UTC+3
	now := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	w := TodayRange(now, utcPlus3)

	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, utcPlus3), w.Start)
	assert.Equal(t, time.Date(2025, 3, 11, 23, 59, 59, int(999*time.Millisecond), utcPlus3), w.End)
	assert.True(t, w.Contains(now))
}

func TestYesterdayRange(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, utcPlus3)
	w := YesterdayRange(now, utcPlus3)
	assert.Equal(t, "2025-02-28", FormatInLocalDay(w.Start, utcPlus3))
	assert.Equal(t, "2025-02-28", FormatInLocalDay(w.End, utcPlus3))
}

func TestThisMonthRange_LeapFebruary(t *testing.T) {
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)
	w := ThisMonthRange(now, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.End)
}

func TestMonthYearRange(t *testing.T) {
	w, err := MonthYearRange(12, 2024, utcPlus3)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01", FormatInLocalDay(w.Start, utcPlus3))
	assert.Equal(t, "2024-12-31", FormatInLocalDay(w.End, utcPlus3))

	cases := []struct {
		month, year int
	}{
		{0, 2024}, {13, 2024}, {1, 1899}, {1, 2101},
	}
	for _, c := range cases {
		_, err := MonthYearRange(c.month, c.year, utcPlus3)
		require.Error(t, err, "month=%d year=%d", c.month, c.year)
		assert.True(t, errors.Is(err, common.ErrInvalidPeriod))
	}
}

func TestLastNDaysRange(t *testing.T) {
	now := time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC)
	w := LastNDaysRange(30, now, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, "2025-01-31", FormatInLocalDay(w.End, time.UTC))
	assert.Len(t, BucketKeys(w, GranularityDay, time.UTC), 31)

	zero := LastNDaysRange(-5, now, time.UTC)
	assert.Equal(t, TodayRange(now, time.UTC), zero)
}

func TestTrailingMonthsRange(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	w := TrailingMonthsRange(12, now, time.UTC)
	keys := BucketKeys(w, GranularityMonth, time.UTC)
	require.Len(t, keys, 12)
	assert.Equal(t, "2024-04", keys[0])
	assert.Equal(t, "2025-03", keys[11])
}

func TestPreviousMonth_Wraparound(t *testing.T) {
	m, y := PreviousMonth(1, 2025)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2024, y)

	m, y = PreviousMonth(7, 2025)
	assert.Equal(t, 6, m)
	assert.Equal(t, 2025, y)
}

func TestParseDateRange(t *testing.T) {
	w, ok := ParseDateRange("2025-01-01", "2025-01-03T10:00:00.000Z", utcPlus3)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, utcPlus3), w.Start)
	assert.Equal(t, time.Date(2025, 1, 3, 23, 59, 59, int(999*time.Millisecond), utcPlus3), w.End)

	bad := [][2]string{
		{"2025-02-30", "2025-03-01"},
		{"2025-13-01", "2025-12-01"},
		{"abcd-01-01", "2025-01-02"},
		{"2025-01-01", ""},
		{"2025/01/01", "2025-01-02"},
		{"2025-01-05", "2025-01-01"},
		{"2025-+1-01", "2025-01-02"},
		{"+025-01-01", "2025-01-02"},
		{"2025-01-01", "2025-01--2"},
	}
	for _, b := range bad {
		_, ok := ParseDateRange(b[0], b[1], utcPlus3)
		assert.False(t, ok, "start=%q end=%q", b[0], b[1])
	}
}

func TestParseLocalDate_RejectsSigns(t *testing.T) {
	for _, s := range []string{"2025-+1-01", "2025-01-+1", "-025-01-01", "2025- 1-01"} {
		_, ok := ParseLocalDate(s, time.UTC)
		assert.False(t, ok, s)
	}
	d, ok := ParseLocalDate("2025-01-01", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), d)
}

func TestFormatInLocalDay_UsesStoreOffset(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-01", FormatInLocalDay(ts, utcPlus3))

	// 22:30 UTC ngày 31/12 vẫn là 2024-12-31 theo UTC nhưng đã sang 2025-01-01 ở UTC+3
	late := time.Date(2024, 12, 31, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-12-31", FormatInLocalDay(late, time.UTC))
	assert.Equal(t, "2025-01-01", FormatInLocalDay(late, utcPlus3))
	assert.Equal(t, "2025-01", FormatInLocalMonth(late, utcPlus3))
}

func TestGranularityFor(t *testing.T) {
	jan, _ := MonthYearRange(1, 2025, time.UTC)
	assert.Equal(t, GranularityDay, GranularityFor(jan, time.UTC))

	w, _ := ParseDateRange("2025-01-01", "2025-02-01", time.UTC)
	assert.Equal(t, GranularityMonth, GranularityFor(w, time.UTC))
}

func TestGranularityFor_FallBackDSTStaysDaily(t *testing.T) {
	// Tháng 10/2024 ở Berlin có ngày 27 dài 25h
	berlin := mustLoad(t, "Europe/Berlin")
	oct, err := MonthYearRange(10, 2024, berlin)
	require.NoError(t, err)
	assert.Greater(t, oct.Duration(), 31*24*time.Hour)
	require.Equal(t, GranularityDay, GranularityFor(oct, berlin))
	keys := BucketKeys(oct, GranularityFor(oct, berlin), berlin)
	require.Len(t, keys, 31)
	assert.Equal(t, "2024-10-01", keys[0])
	assert.Equal(t, "2024-10-31", keys[30])

	// 30 ngày gần nhất qua 2024-11-03 ở New York
	ny := mustLoad(t, "America/New_York")
	now := time.Date(2024, 11, 20, 15, 0, 0, 0, ny)
	last30 := LastNDaysRange(30, now, ny)
	require.Equal(t, GranularityDay, GranularityFor(last30, ny))
	keys = BucketKeys(last30, GranularityFor(last30, ny), ny)
	require.Len(t, keys, 31)
	assert.Equal(t, "2024-10-21", keys[0])
	assert.Equal(t, "2024-11-20", keys[30])

	// 32 ngày lịch thì chuyển sang tháng
	long, ok := ParseDateRange("2024-10-01", "2024-11-01", berlin)
	require.True(t, ok)
	assert.Equal(t, GranularityMonth, GranularityFor(long, berlin))
}

func TestBucketKeys_GaplessAcrossDST(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	// DST bắt đầu 2025-03-09 ở New York
	w, ok := ParseDateRange("2025-03-01", "2025-03-31", ny)
	require.True(t, ok)
	keys := BucketKeys(w, GranularityDay, ny)
	require.Len(t, keys, 31)

	seen := make(map[string]bool)
	for i, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		expected := time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC).Format(DayKeyLayout)
		assert.Equal(t, expected, k)
	}
}

func TestBucketKeys_Monthly(t *testing.T) {
	w, ok := ParseDateRange("2024-11-15", "2025-02-03", time.UTC)
	require.True(t, ok)
	assert.Equal(t, []string{"2024-11", "2024-12", "2025-01", "2025-02"}, BucketKeys(w, GranularityMonth, time.UTC))
	assert.Empty(t, BucketKeys(Window{Start: w.End, End: w.Start}, GranularityDay, time.UTC))
}

func TestPreviousPeriod_EqualDuration(t *testing.T) {
	w, _ := ParseDateRange("2025-01-01", "2025-01-30", utcPlus3)
	prev := PreviousPeriod(w, utcPlus3)
	assert.Equal(t, "2024-12-02", FormatInLocalDay(prev.Start, utcPlus3))
	assert.Equal(t, "2024-12-31", FormatInLocalDay(prev.End, utcPlus3))
	assert.Equal(t, LocalDayCount(w, utcPlus3), LocalDayCount(prev, utcPlus3))
	assert.Equal(t, w.Start.Add(-time.Millisecond), prev.End)

	partial := Window{
		Start: time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC),
	}
	p := PreviousPeriod(partial, time.UTC)
	assert.Equal(t, partial.Duration(), p.Duration())
	assert.True(t, p.End.Before(partial.Start))
}
