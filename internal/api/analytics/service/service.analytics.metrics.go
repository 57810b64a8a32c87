// Package analyticssvc chứa logic analytics của store: resolve kỳ báo cáo theo timezone store,
// đọc ledger (transactions, expenses, products) qua aggregation, tính dashboard, chuỗi chi phí và so sánh giá nhập.
package analyticssvc

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
)

// UnknownPaymentMethod là key khi giao dịch không ghi phương thức thanh toán
const UnknownPaymentMethod = "unknown"

// paymentMethodAliases: các giá trị lịch sử → kênh thanh toán chuẩn
var paymentMethodAliases = map[string]string{
	"card":             "pos",
	"pos":              "pos",
	"bank_card":        "pos",
	"debit_card":       "pos",
	"credit_card":      "pos",
	"transfer":         "naira_transfer",
	"naira_transfer":   "naira_transfer",
	"bank_transfer":    "naira_transfer",
	"crypto":           "crypto_payment",
	"crypto_payment":   "crypto_payment",
	"cash_on_delivery": "cash",
	"cod":              "cash",
	"cash":             "cash",
}

// NormalizePaymentMethod đưa phương thức thanh toán về kênh chuẩn (pos, naira_transfer, crypto_payment, cash).
// Giá trị ngoài bảng alias được giữ nguyên dạng chữ thường. Hàm idempotent.
func NormalizePaymentMethod(method string) string {
	key := strings.ToLower(strings.TrimSpace(method))
	if key == "" {
		return UnknownPaymentMethod
	}
	if canonical, ok := paymentMethodAliases[key]; ok {
		return canonical
	}
	return key
}

// paymentAliasGroups trả về canonical → danh sách alias (đã sort), dùng để dựng biểu thức $switch phía MongoDB.
func paymentAliasGroups() ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for alias, canonical := range paymentMethodAliases {
		groups[canonical] = append(groups[canonical], alias)
	}
	canonicals := make([]string, 0, len(groups))
	for canonical, aliases := range groups {
		sort.Strings(aliases)
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	return canonicals, groups
}

// NormalizeOrderSource đưa nguồn đơn về chữ thường, rỗng → unknown
func NormalizeOrderSource(source string) string {
	key := strings.ToLower(strings.TrimSpace(source))
	if key == "" {
		return "unknown"
	}
	return key
}

// ResolveStatuses chuyển filter status thành danh sách trạng thái cần lọc.
// Rỗng → {pending, completed}; "all" → nil (không lọc); còn lại → đúng trạng thái đó.
func ResolveStatuses(status string) []string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "":
		return []string{models.TransactionStatusPending, models.TransactionStatusCompleted}
	case "all":
		return nil
	default:
		return []string{s}
	}
}

// Round2 làm tròn 2 chữ số thập phân
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PctChange(previous, current) = (current - previous) / previous * 100, làm tròn 2 chữ số.
// previous = 0: trả về 100 nếu current > 0, ngược lại 0.
func PctChange(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	cur := decimal.NewFromFloat(current)
	prev := decimal.NewFromFloat(previous)
	f, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return f
}

// safeDiv chia, mẫu = 0 trả về 0
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Float64()
	return f
}

// BucketTotals là tổng tiền + số bản ghi của một bucket (hoặc cả window)
type BucketTotals struct {
	Amount float64 `bson:"amount"`
	Count  int64   `bson:"count"`
}

// FillSeries dựng chuỗi doanh thu liên tục: mỗi key đúng một bucket, key thiếu dữ liệu có revenue = 0, count = 0.
func FillSeries(keys []string, got map[string]BucketTotals) []analyticsdto.PeriodBucket {
	series := make([]analyticsdto.PeriodBucket, 0, len(keys))
	for _, key := range keys {
		b := got[key]
		series = append(series, analyticsdto.PeriodBucket{
			Key:              key,
			Revenue:          Round2(b.Amount),
			TransactionCount: b.Count,
		})
	}
	return series
}

// FillExpenseSeries giống FillSeries cho chuỗi chi phí
func FillExpenseSeries(keys []string, got map[string]BucketTotals) []analyticsdto.ExpenseBucket {
	series := make([]analyticsdto.ExpenseBucket, 0, len(keys))
	for _, key := range keys {
		b := got[key]
		series = append(series, analyticsdto.ExpenseBucket{
			Key:    key,
			Amount: Round2(b.Amount),
			Count:  b.Count,
		})
	}
	return series
}
