package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// slowThreshold: truy vấn chậm hơn ngưỡng này được log ở mức Warn.
const slowThreshold = 2 * time.Second

// LogDuration ghi thời gian chạy của một metric/truy vấn vào performance log.
//
//	defer logger.LogDuration("dashboard.salesByPeriod", storeID, time.Now())
func LogDuration(metric, storeID string, start time.Time) {
	elapsed := time.Since(start)
	entry := GetPerformanceLogger().WithFields(logrus.Fields{
		"metric":      metric,
		"store_id":    storeID,
		"duration_ms": elapsed.Milliseconds(),
	})
	if elapsed > slowThreshold {
		entry.Warn("Slow analytics query")
		return
	}
	entry.Debug("Analytics query finished")
}
