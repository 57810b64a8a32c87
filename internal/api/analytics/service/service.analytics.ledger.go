package analyticssvc

import (
	"context"
	"strings"
	"time"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/timerange"
	"greep_market/internal/utility"
)

// TransactionQuery là điều kiện lọc giao dịch dùng chung cho mọi aggregation của một request
type TransactionQuery struct {
	StoreID       string
	Window        timerange.Window
	Statuses      []string // nil = mọi trạng thái
	PaymentMethod string   // đã normalize, rỗng = không lọc
	OrderSource   string   // chữ thường, rỗng = không lọc
}

// NewTransactionQuery dựng query từ filter dashboard
func NewTransactionQuery(storeID string, w timerange.Window, f analyticsdto.DashboardFilters) TransactionQuery {
	q := TransactionQuery{
		StoreID:  storeID,
		Window:   w,
		Statuses: ResolveStatuses(f.Status),
	}
	if strings.TrimSpace(f.PaymentMethod) != "" {
		q.PaymentMethod = NormalizePaymentMethod(f.PaymentMethod)
	}
	if strings.TrimSpace(f.OrderSource) != "" {
		q.OrderSource = strings.ToLower(strings.TrimSpace(f.OrderSource))
	}
	return q
}

// WithWindow trả về bản sao query với window khác, các filter giữ nguyên
func (q TransactionQuery) WithWindow(w timerange.Window) TransactionQuery {
	q.Window = w
	return q
}

// Matches kiểm tra một giao dịch có thỏa query không (cùng ngữ nghĩa với $match phía MongoDB)
func (q TransactionQuery) Matches(t *models.Transaction) bool {
	if t.StoreID != q.StoreID || !q.Window.Contains(t.CreatedAt) {
		return false
	}
	if len(q.Statuses) > 0 && !utility.Contains(q.Statuses, t.Status) {
		return false
	}
	if q.PaymentMethod != "" && NormalizePaymentMethod(t.PaymentMethod) != q.PaymentMethod {
		return false
	}
	if q.OrderSource != "" && t.OrderSource != q.OrderSource {
		return false
	}
	return true
}

// TransactionBreakdowns là tổng tiền theo kênh thanh toán (đã normalize) và theo nguồn đơn
type TransactionBreakdowns struct {
	PaymentMethods map[string]float64
	OrderSources   map[string]float64
}

// ProductSales là doanh số của một sản phẩm (gom từ items của các giao dịch)
type ProductSales struct {
	ProductID    string  `bson:"_id"`
	ProductName  string  `bson:"productName"`
	Quantity     float64 `bson:"quantity"`
	Revenue      float64 `bson:"revenue"`
	AvgUnitPrice float64 `bson:"avgUnitPrice"`
	Lines        int64   `bson:"lines"`
}

// TransactionStore đọc ledger giao dịch.
// Mọi tổng tiền coi giá trị thiếu là 0.
type TransactionStore interface {
	// Totals trả về tổng total_amount và số giao dịch
	Totals(ctx context.Context, q TransactionQuery) (BucketTotals, error)
	// SeriesBuckets gom theo key ngày/tháng local (cùng format với timerange.Granularity.Key)
	SeriesBuckets(ctx context.Context, q TransactionQuery, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error)
	// Breakdowns gom theo kênh thanh toán (normalize trước khi gom) và nguồn đơn, trên toàn bộ giao dịch khớp query
	Breakdowns(ctx context.Context, q TransactionQuery) (*TransactionBreakdowns, error)
	// ProductSales unwind items rồi gom theo product_id
	ProductSales(ctx context.Context, q TransactionQuery) ([]ProductSales, error)
	// Recent trả về limit giao dịch mới nhất
	Recent(ctx context.Context, q TransactionQuery, limit int) ([]models.Transaction, error)
}

// ExpenseStore đọc ledger chi phí, lọc theo field date
type ExpenseStore interface {
	Totals(ctx context.Context, storeID string, w timerange.Window) (BucketTotals, error)
	SeriesBuckets(ctx context.Context, storeID string, w timerange.Window, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error)
	// Stats: w = nil nghĩa là toàn bộ lịch sử
	Stats(ctx context.Context, storeID string, w *timerange.Window, loc *time.Location) (*analyticsdto.ExpenseStats, error)
	FindByID(ctx context.Context, storeID, expenseID string) (*models.Expense, error)
}

// ProductStore đọc catalog sản phẩm
type ProductStore interface {
	Inventory(ctx context.Context, storeID string) (*analyticsdto.InventorySummary, error)
	// InStock trả về sản phẩm đang bán có stock_quantity > 0
	InStock(ctx context.Context, storeID string) ([]models.Product, error)
	// FindForExpense tìm sản phẩm của expense: theo product_id nếu có, không thì theo tên (không phân biệt hoa thường)
	FindForExpense(ctx context.Context, storeID string, expense *models.Expense) (*models.Product, error)
}

// StoreTimezoneResolver trả về timezone của store
type StoreTimezoneResolver interface {
	GetStoreTimezone(ctx context.Context, storeID string) (*time.Location, error)
}
