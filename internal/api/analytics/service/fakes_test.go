package analyticssvc

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	analyticsdto "greep_market/internal/api/analytics/dto"
	"greep_market/internal/api/analytics/models"
	"greep_market/internal/common"
	"greep_market/internal/timerange"
)

var errFakeDown = errors.New("fake ledger down")

// fakeTransactions là TransactionStore in-memory, áp dụng cùng ngữ nghĩa filter với TransactionQuery.Matches
type fakeTransactions struct {
	mu      sync.Mutex
	items   []models.Transaction
	fail    map[string]bool // tên method → trả lỗi
	windows []timerange.Window
	calls   int
}

func (f *fakeTransactions) record(method string, q TransactionQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.windows = append(f.windows, q.Window)
	if f.fail[method] {
		return errFakeDown
	}
	return nil
}

func (f *fakeTransactions) matching(q TransactionQuery) []models.Transaction {
	out := make([]models.Transaction, 0)
	for i := range f.items {
		if q.Matches(&f.items[i]) {
			out = append(out, f.items[i])
		}
	}
	return out
}

func (f *fakeTransactions) Totals(_ context.Context, q TransactionQuery) (BucketTotals, error) {
	if err := f.record("Totals", q); err != nil {
		return BucketTotals{}, err
	}
	var t BucketTotals
	for _, tx := range f.matching(q) {
		t.Amount += tx.TotalAmount
		t.Count++
	}
	return t, nil
}

func (f *fakeTransactions) SeriesBuckets(_ context.Context, q TransactionQuery, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error) {
	if err := f.record("SeriesBuckets", q); err != nil {
		return nil, err
	}
	out := make(map[string]BucketTotals)
	for _, tx := range f.matching(q) {
		key := g.Key(tx.CreatedAt, loc)
		b := out[key]
		b.Amount += tx.TotalAmount
		b.Count++
		out[key] = b
	}
	return out, nil
}

func (f *fakeTransactions) Breakdowns(_ context.Context, q TransactionQuery) (*TransactionBreakdowns, error) {
	if err := f.record("Breakdowns", q); err != nil {
		return nil, err
	}
	out := &TransactionBreakdowns{PaymentMethods: map[string]float64{}, OrderSources: map[string]float64{}}
	for _, tx := range f.matching(q) {
		out.PaymentMethods[NormalizePaymentMethod(tx.PaymentMethod)] += tx.TotalAmount
		out.OrderSources[NormalizeOrderSource(tx.OrderSource)] += tx.TotalAmount
	}
	return out, nil
}

func (f *fakeTransactions) ProductSales(_ context.Context, q TransactionQuery) ([]ProductSales, error) {
	if err := f.record("ProductSales", q); err != nil {
		return nil, err
	}
	byID := make(map[string]*ProductSales)
	priceSum := make(map[string]float64)
	for _, tx := range f.matching(q) {
		for _, it := range tx.Items {
			ps, ok := byID[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, ProductName: it.ProductName}
				byID[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue += it.TotalPrice
			ps.Lines++
			priceSum[it.ProductID] += it.UnitPrice
		}
	}
	out := make([]ProductSales, 0, len(byID))
	for id, ps := range byID {
		ps.AvgUnitPrice = priceSum[id] / float64(ps.Lines)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (f *fakeTransactions) Recent(_ context.Context, q TransactionQuery, limit int) ([]models.Transaction, error) {
	if err := f.record("Recent", q); err != nil {
		return nil, err
	}
	txs := f.matching(q)
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// fakeExpenses là ExpenseStore in-memory
type fakeExpenses struct {
	mu      sync.Mutex
	items   []models.Expense
	fail    bool
	windows []timerange.Window
}

func (f *fakeExpenses) record(w timerange.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
	if f.fail {
		return errFakeDown
	}
	return nil
}

func (f *fakeExpenses) matching(storeID string, w *timerange.Window) []models.Expense {
	out := make([]models.Expense, 0)
	for _, e := range f.items {
		if e.StoreID != storeID {
			continue
		}
		if w != nil && !w.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeExpenses) Totals(_ context.Context, storeID string, w timerange.Window) (BucketTotals, error) {
	if err := f.record(w); err != nil {
		return BucketTotals{}, err
	}
	var t BucketTotals
	for _, e := range f.matching(storeID, &w) {
		t.Amount += e.Amount
		t.Count++
	}
	return t, nil
}

func (f *fakeExpenses) SeriesBuckets(_ context.Context, storeID string, w timerange.Window, g timerange.Granularity, loc *time.Location) (map[string]BucketTotals, error) {
	if err := f.record(w); err != nil {
		return nil, err
	}
	out := make(map[string]BucketTotals)
	for _, e := range f.matching(storeID, &w) {
		key := g.Key(e.Date, loc)
		b := out[key]
		b.Amount += e.Amount
		b.Count++
		out[key] = b
	}
	return out, nil
}

func (f *fakeExpenses) Stats(_ context.Context, storeID string, w *timerange.Window, loc *time.Location) (*analyticsdto.ExpenseStats, error) {
	if f.fail {
		return nil, errFakeDown
	}
	stats := newExpenseStats()
	byCategory := map[string]*breakdownRow{}
	for _, e := range f.matching(storeID, w) {
		stats.TotalAmount += e.Amount
		stats.TotalCount++
		row, ok := byCategory[e.Category]
		if !ok {
			row = &breakdownRow{Key: e.Category}
			byCategory[e.Category] = row
		}
		row.Amount += e.Amount
		row.Count++
	}
	rows := make([]breakdownRow, 0, len(byCategory))
	for _, r := range byCategory {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	stats.ByCategory = roundBreakdown(rows)
	return stats, nil
}

func (f *fakeExpenses) FindByID(_ context.Context, storeID, expenseID string) (*models.Expense, error) {
	for _, e := range f.items {
		if e.StoreID == storeID && e.ID.Hex() == expenseID {
			cp := e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// fakeProducts là ProductStore in-memory
type fakeProducts struct {
	items []models.Product
	fail  bool
}

func (f *fakeProducts) Inventory(_ context.Context, storeID string) (*analyticsdto.InventorySummary, error) {
	if f.fail {
		return nil, errFakeDown
	}
	inv := &analyticsdto.InventorySummary{Categories: map[string]int64{}}
	for _, p := range f.items {
		if p.StoreID != storeID {
			continue
		}
		inv.TotalProducts++
		inv.Categories[p.Category]++
		if p.IsActive {
			inv.ActiveProducts++
			if p.IsLowStock() {
				inv.LowStockCount++
			}
		}
	}
	return inv, nil
}

func (f *fakeProducts) InStock(_ context.Context, storeID string) ([]models.Product, error) {
	if f.fail {
		return nil, errFakeDown
	}
	out := make([]models.Product, 0)
	for _, p := range f.items {
		if p.StoreID == storeID && p.IsActive && p.StockQuantity > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) FindForExpense(_ context.Context, storeID string, e *models.Expense) (*models.Product, error) {
	for _, p := range f.items {
		if p.StoreID != storeID {
			continue
		}
		if (e.ProductID != "" && p.ID.Hex() == e.ProductID) || (e.ProductID == "" && strings.EqualFold(p.Name, e.ProductName)) {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// failingBackend là CacheBackend luôn lỗi
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errFakeDown
}

func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errFakeDown
}
