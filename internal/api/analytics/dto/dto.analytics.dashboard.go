// Package analyticsdto chứa DTO cho domain Analytics (dashboard, expense series/stats, so sánh giá nhập).
// Tên field JSON giữ nguyên để client cũ đọc được.
package analyticsdto

import (
	"encoding/json"
	"time"
)

// DashboardFilters là filter của GET /analytics/dashboard.
// Month/Year phải đi cùng nhau.
type DashboardFilters struct {
	DateRange     string `json:"dateRange,omitempty" query:"dateRange" validate:"omitempty,date_range"`
	PaymentMethod string `json:"paymentMethod,omitempty" query:"paymentMethod" validate:"omitempty,max=64,no_xss"`
	OrderSource   string `json:"orderSource,omitempty" query:"orderSource" validate:"omitempty,max=64,no_xss"`
	Status        string `json:"status,omitempty" query:"status" validate:"omitempty,oneof=pending completed cancelled voided all"`
	StartDate     string `json:"startDate,omitempty" query:"startDate" validate:"omitempty,local_date"`
	EndDate       string `json:"endDate,omitempty" query:"endDate" validate:"omitempty,local_date"`
	Month         int    `json:"month,omitempty" query:"month" validate:"required_with=Year,omitempty,min=1,max=12"`
	Year          int    `json:"year,omitempty" query:"year" validate:"required_with=Month,omitempty,min=1900,max=2100"`
}

// HasMonthYear true khi có month + year và không có startDate/endDate
func (f DashboardFilters) HasMonthYear() bool {
	return f.Month != 0 && f.Year != 0 && f.StartDate == "" && f.EndDate == ""
}

// Signature trả về chuỗi ổn định của filter, dùng làm một phần cache key.
func (f DashboardFilters) Signature() string {
	b, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(b)
}

// PeriodBucket là một bucket (ngày "YYYY-MM-DD" hoặc tháng "YYYY-MM") của chuỗi doanh thu
type PeriodBucket struct {
	Key              string  `json:"key"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int64   `json:"transactionCount"`
}

// PeriodChanges là % thay đổi so với kỳ so sánh (25.0 nghĩa là +25%)
type PeriodChanges struct {
	Sales        float64 `json:"sales"`
	Expenses     float64 `json:"expenses"`
	Profit       float64 `json:"profit"`
	Transactions float64 `json:"transactions"`
}

// ProductRanking là một dòng trong các bảng xếp hạng sản phẩm
type ProductRanking struct {
	ProductID        string  `json:"productId"`
	ProductName      string  `json:"productName"`
	QuantitySold     float64 `json:"quantitySold"`
	Revenue          float64 `json:"revenue"`
	AverageUnitPrice float64 `json:"averageUnitPrice"`
	ProfitMargin     float64 `json:"profitMargin,omitempty"`  // mostProfitable
	UnitsPerDay      float64 `json:"unitsPerDay,omitempty"`   // fastestMoving
	StockQuantity    float64 `json:"stockQuantity,omitempty"` // worstPerformers
	LowStock         bool    `json:"lowStock,omitempty"`      // worstPerformers: tồn kho <= mức tối thiểu
}

// InventorySummary là khối tồn kho của dashboard
type InventorySummary struct {
	TotalProducts  int64            `json:"totalProducts"`
	ActiveProducts int64            `json:"activeProducts"`
	LowStockCount  int64            `json:"lowStockCount"`
	Categories     map[string]int64 `json:"categories"`
}

// RecentTransaction là giao dịch gần nhất trong kỳ
type RecentTransaction struct {
	ID            string    `json:"id"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	OrderSource   string    `json:"orderSource"`
	ItemCount     int       `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PeriodInfo mô tả kỳ chính đã resolve
type PeriodInfo struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PreviousStart time.Time `json:"previousStart"`
	PreviousEnd   time.Time `json:"previousEnd"`
	Granularity   string    `json:"granularity"`
	Timezone      string    `json:"timezone"`
	Source        string    `json:"source"` // month_year | date_range | custom | default
}

// DashboardMetrics là payload của dashboard. Tính theo request, cache ngắn hạn, không lưu DB.
type DashboardMetrics struct {
	// Tổng theo kỳ chính
	TotalSales              float64 `json:"totalSales"`
	TotalTransactions       int64   `json:"totalTransactions"`
	AverageTransactionValue float64 `json:"averageTransactionValue"`
	TotalExpenses           float64 `json:"totalExpenses"`
	NetProfit               float64 `json:"netProfit"`

	// Hôm nay và tháng này (không phụ thuộc kỳ chính)
	TodaySales          float64 `json:"todaySales"`
	TodayTransactions   int64   `json:"todayTransactions"`
	TodayExpenses       float64 `json:"todayExpenses"`
	MonthlySales        float64 `json:"monthlySales"`
	MonthlyTransactions int64   `json:"monthlyTransactions"`

	GrowthRate float64       `json:"growthRate"`
	Changes    PeriodChanges `json:"changes"`
	DayOverDay PeriodChanges `json:"dayOverDay"`

	SalesByPeriod    []PeriodBucket  `json:"salesByPeriod"`
	SalesByMonth     []PeriodBucket  `json:"salesByMonth"`
	ExpensesByPeriod []ExpenseBucket `json:"expensesByPeriod"`

	PaymentMethods map[string]float64 `json:"paymentMethods"`
	OrderSources   map[string]float64 `json:"orderSources"`

	TopProducts     []ProductRanking `json:"topProducts"`
	BestPerformers  []ProductRanking `json:"bestPerformers"`
	WorstPerformers []ProductRanking `json:"worstPerformers"`
	FastestMoving   []ProductRanking `json:"fastestMoving"`
	MostProfitable  []ProductRanking `json:"mostProfitable"`

	Inventory          InventorySummary    `json:"inventory"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`

	Period      PeriodInfo `json:"period"`
	GeneratedAt time.Time  `json:"generatedAt"`
}
