package analyticsdto

import "time"

// ExpenseQueryParams là query chung của series/stats chi phí
type ExpenseQueryParams struct {
	StartDate string `query:"startDate" validate:"omitempty,local_date"`
	EndDate   string `query:"endDate" validate:"omitempty,local_date"`
}

// ExpenseBucket là một bucket của chuỗi chi phí; bucket không có chi phí vẫn xuất hiện với amount = 0, count = 0
type ExpenseBucket struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// ExpenseSeries là chuỗi chi phí liên tục của một window
type ExpenseSeries struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Granularity string          `json:"granularity"`
	Timezone    string          `json:"timezone"`
	Series      []ExpenseBucket `json:"series"`
}

// BreakdownItem là một dòng trong bảng tổng hợp (theo category, phương thức thanh toán, tháng, sản phẩm)
type BreakdownItem struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// ExpenseStats là bảng tổng hợp chi phí (không gap-fill)
type ExpenseStats struct {
	TotalCount      int64           `json:"totalCount"`
	TotalAmount     float64         `json:"totalAmount"`
	ByCategory      []BreakdownItem `json:"byCategory"`
	ByPaymentMethod []BreakdownItem `json:"byPaymentMethod"`
	ByMonth         []BreakdownItem `json:"byMonth"`     // 12 tháng gần nhất có dữ liệu
	TopProducts     []BreakdownItem `json:"topProducts"` // 10 sản phẩm chi nhiều nhất
}

// PriceComparison so sánh giá nhập mới (từ expense) với giá vốn hiện tại của sản phẩm
type PriceComparison struct {
	ExpenseID             string  `json:"expenseId"`
	ProductID             string  `json:"productId,omitempty"`
	ProductName           string  `json:"productName"`
	PreviousCostPrice     float64 `json:"previousCostPrice"`
	NewCostPrice          float64 `json:"newCostPrice"`
	PriceChangePercentage float64 `json:"priceChangePercentage"`
	MarkupPercentage      float64 `json:"markupPercentage"`
	CurrentSellingPrice   float64 `json:"currentSellingPrice"`
	SuggestedSellingPrice float64 `json:"suggestedSellingPrice"`
}
