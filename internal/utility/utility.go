// Package utility chứa các helper nhỏ dùng chung: cache in-memory có TTL, chạy goroutine an toàn, thao tác slice.
package utility

import (
	"runtime/debug"

	"greep_market/internal/logger"
)

// GoProtect chạy f và bắt panic, log kèm stack thay vì làm dừng process.
func GoProtect(name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithFields(map[string]interface{}{
				"goroutine": name,
				"panic":     r,
				"stack":     string(debug.Stack()),
			}).Error("Goroutine panic")
		}
	}()
	f()
}

// Contains kiểm tra item có trong slice không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
