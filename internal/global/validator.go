package global

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"greep_market/internal/utility"
)

// DateRangeTokens là các giá trị hợp lệ của filter dateRange
var DateRangeTokens = []string{"today", "this_month", "7d", "30d", "90d", "1y"}

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("date_range", validateDateRange)
	_ = Validate.RegisterValidation("local_date", validateLocalDate)
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
}

// validateDateRange kiểm tra token dateRange (rỗng = không lọc)
func validateDateRange(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || utility.Contains(DateRangeTokens, value)
}

// validateLocalDate chỉ kiểm tra hình dạng "YYYY-MM-DD..." (rỗng = bỏ qua).
// Ngày sai giá trị (vd: 2025-02-30) vẫn qua được đây, tầng service sẽ fallback về kỳ mặc định.
func validateLocalDate(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	if len(value) < 10 || value[4] != '-' || value[7] != '-' {
		return false
	}
	for i, r := range value[:10] {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"eval(",
		"<iframe",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}
